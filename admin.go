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
)

// adminAPI defines interfaces under /v1/namespaces/{ns}/tables.
type adminAPI interface {
	// createTable creates a table from the given descriptor.
	createTable(ctx context.Context, desc *TableDescriptor) error
	// disableTable disables the named table.
	disableTable(ctx context.Context, table string) error
	// deleteTable deletes the named table. The table must be disabled first.
	deleteTable(ctx context.Context, table string) error
	// listTables lists the table names of the namespace.
	listTables(ctx context.Context) ([]string, error)
}

var _ adminAPI = (*Connection)(nil)

// TableDescriptor describes the schema of a table to create: its name and
// the names of its column families.
type TableDescriptor struct {
	Name           string   `json:"table_name"`
	ColumnFamilies []string `json:"column_families"`
}

// Admin is a handle for schema management operations, distinct from data
// reads and writes.
type Admin struct {
	conn *Connection
}

// CreateTable creates the described table.
//
// There is no idempotency check: creating a table that already exists fails
// with a TABLE_EXISTS error.
func (a *Admin) CreateTable(ctx context.Context, desc *TableDescriptor) error {
	return a.conn.createTable(ctx, desc)
}

// DisableTable disables the named table. A table must be disabled before it
// can be deleted.
func (a *Admin) DisableTable(ctx context.Context, table string) error {
	return a.conn.disableTable(ctx, table)
}

// DeleteTable deletes the named table. Deleting a table that is still
// enabled fails with a TABLE_NOT_DISABLED error.
func (a *Admin) DeleteTable(ctx context.Context, table string) error {
	return a.conn.deleteTable(ctx, table)
}

// DropTable disables and then deletes the named table.
func (a *Admin) DropTable(ctx context.Context, table string) error {
	if err := a.DisableTable(ctx, table); err != nil {
		return err
	}
	return a.DeleteTable(ctx, table)
}

// TableNames returns the names of all tables of the namespace, sorted.
func (a *Admin) TableNames(ctx context.Context) ([]string, error) {
	return a.conn.listTables(ctx)
}

type listTablesResponse struct {
	Tables []string `json:"tables"`
}

func (conn *Connection) createTable(ctx context.Context, desc *TableDescriptor) error {
	req, err := conn.apiURL()
	if err != nil {
		return err
	}

	body, err := json.Marshal(desc)
	if err != nil {
		return err
	}

	resp, err := conn.http.Post(ctx, req, body)
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	return checkStatusCodeOK(resp)
}

func (conn *Connection) disableTable(ctx context.Context, table string) error {
	req, err := conn.apiURL(table, "disable")
	if err != nil {
		return err
	}

	resp, err := conn.http.Post(ctx, req, nil)
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	return checkStatusCodeOK(resp)
}

func (conn *Connection) deleteTable(ctx context.Context, table string) error {
	req, err := conn.apiURL(table)
	if err != nil {
		return err
	}

	resp, err := conn.http.Delete(ctx, req)
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	return checkStatusCodeOK(resp)
}

func (conn *Connection) listTables(ctx context.Context) ([]string, error) {
	req, err := conn.apiURL()
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
	var respData listTablesResponse
	err = json.Unmarshal(data, &respData)
	return respData.Tables, err
}
