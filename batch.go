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
	"io"

	"github.com/google/uuid"
)

// batchAPI defines interfaces under /v1/namespaces/{ns}/tables/{table}/batch.
type batchAPI interface {
	// batchWrite writes a staged cell batch in a single round trip.
	batchWrite(ctx context.Context, table string, req *batchWriteRequest) (*batchWriteResponse, error)
}

var _ batchAPI = (*Connection)(nil)

type batchWriteRequest struct {
	// BatchId is a client generated UUID identifying this batch.
	BatchId string `json:"batch_id"`
	// Rows is a base64 encoded string containing Arrow record batches,
	// one cell per Arrow row.
	Rows string `json:"rows"`
}

type batchWriteResponse struct {
	CellsWritten int `json:"cells_written"`
}

// Batch stages puts client-side and writes them in a single round trip.
//
// Unlike Table.Put, a flushed batch carries every staged cell in one Arrow
// payload. There is no transactional guarantee across the cells of a batch.
type Batch struct {
	conn  *Connection
	table string

	puts []*Put
}

// Batch creates an empty batch for the table.
func (t *Table) Batch() *Batch {
	return &Batch{conn: t.conn, table: t.Name}
}

// Add stages a put in the batch.
func (b *Batch) Add(p *Put) {
	b.puts = append(b.puts, p)
}

// Len returns the number of staged puts.
func (b *Batch) Len() int {
	return len(b.puts)
}

// Flush writes all staged puts and clears the batch. It reports the number
// of cells written. Flushing an empty batch is a no-op.
func (b *Batch) Flush(ctx context.Context) (int, error) {
	if len(b.puts) == 0 {
		return 0, nil
	}

	rows, err := encodeCellBatch(b.puts)
	if err != nil {
		return 0, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return 0, err
	}

	resp, err := b.conn.batchWrite(ctx, b.table, &batchWriteRequest{
		BatchId: id.String(),
		Rows:    string(rows),
	})
	if err != nil {
		return 0, err
	}

	b.puts = b.puts[:0]
	return resp.CellsWritten, nil
}

func (conn *Connection) batchWrite(ctx context.Context, table string, request *batchWriteRequest) (*batchWriteResponse, error) {
	req, err := conn.apiURL(table, "batch")
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
	var respData batchWriteResponse
	err = json.Unmarshal(data, &respData)
	return &respData, err
}
