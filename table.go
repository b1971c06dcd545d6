/*
 * Copyright 2025 BigRow, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package bigrow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
)

// Table is a handle for reads and writes against one table.
type Table struct {
	conn *Connection

	// Name is the name of the table.
	Name string
}

// Put is a single-row write: one or more cells stored under the same row key.
type Put struct {
	// RowKey is the unique key of the row to write.
	RowKey string

	cells []Cell
}

// NewPut creates a Put for the given row key.
func NewPut(rowKey string) *Put {
	return &Put{RowKey: rowKey}
}

// AddColumn appends a cell at (family, qualifier) to the put.
func (p *Put) AddColumn(family, qualifier string, value []byte) *Put {
	p.cells = append(p.cells, Cell{Family: family, Qualifier: qualifier, Value: value})
	return p
}

// rowAPI defines interfaces under /v1/namespaces/{ns}/tables/{table}/rows.
type rowAPI interface {
	// putRow writes the cells of one row in a single round trip.
	putRow(ctx context.Context, table, rowKey string, req *putRowRequest) (*putRowResponse, error)
	// getRow fetches one row by its key.
	getRow(ctx context.Context, table, rowKey string) (*Row, error)
}

var _ rowAPI = (*Connection)(nil)

// Put writes all cells of the put in a single round trip.
//
// Cells written by separate calls are separate round trips with no
// transactional guarantee across them.
func (t *Table) Put(ctx context.Context, p *Put) error {
	if len(p.cells) == 0 {
		return errors.New("put has no cells")
	}
	_, err := t.conn.putRow(ctx, t.Name, p.RowKey, &putRowRequest{Cells: p.cells})
	return err
}

// Get fetches the row at the given key.
//
// A missing row yields an empty row, not an error; looking up a cell the
// row does not have yields a nil value.
func (t *Table) Get(ctx context.Context, rowKey string) (*Row, error) {
	row, err := t.conn.getRow(ctx, t.Name, rowKey)
	if IsRowNotFound(err) {
		return &Row{Key: rowKey}, nil
	}
	return row, err
}

type putRowRequest struct {
	Cells []Cell `json:"cells"`
}

type putRowResponse struct {
	CellsWritten int `json:"cells_written"`
}

func (conn *Connection) putRow(ctx context.Context, table, rowKey string, request *putRowRequest) (*putRowResponse, error) {
	req, err := conn.apiURL(table, "rows", rowKey)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	resp, err := conn.http.Post(ctx, req, body)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var respData putRowResponse
	err = json.Unmarshal(data, &respData)
	return &respData, err
}

func (conn *Connection) getRow(ctx context.Context, table, rowKey string) (*Row, error) {
	req, err := conn.apiURL(table, "rows", rowKey)
	if err != nil {
		return nil, err
	}

	resp, err := conn.http.Get(ctx, req)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var row Row
	err = json.Unmarshal(data, &row)
	return &row, err
}
