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

// Package gatewaytest provides an in-memory BigRow gateway for tests.
//
// The server speaks the same wire protocol as a real gateway and keeps all
// data in memory, so client code can be exercised without a running
// service. It is a test fixture, not a storage engine: durability,
// authentication and multi-node behavior are out of scope.
package gatewaytest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	bigrow "github.com/bigrowdb/bigrow-sdk/go"
)

// Server is an in-memory BigRow gateway listening on a local port.
type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	namespaces map[string]map[string]*table
}

type table struct {
	families map[string]bool
	disabled bool

	rowKeys []string // sorted
	rows    map[string]*bigrow.Row
}

// NewServer starts an in-memory gateway. The caller must Close it.
func NewServer() *Server {
	s := &Server{namespaces: make(map[string]map[string]*table)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Endpoint returns the base URL clients should connect to.
func (s *Server) Endpoint() string {
	return s.srv.URL
}

// Close shuts the gateway down.
func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if len(parts) < 4 || parts[0] != "v1" || parts[1] != "namespaces" || parts[3] != "tables" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
		return
	}
	ns, rest := parts[2], parts[4:]

	s.mu.Lock()
	defer s.mu.Unlock()

	tables := s.namespaces[ns]
	if tables == nil {
		tables = make(map[string]*table)
		s.namespaces[ns] = tables
	}

	switch {
	case len(rest) == 0 && r.Method == http.MethodPost:
		s.createTable(w, r, tables)
	case len(rest) == 0 && r.Method == http.MethodGet:
		s.listTables(w, tables)
	case len(rest) == 1 && r.Method == http.MethodDelete:
		s.deleteTable(w, tables, rest[0])
	case len(rest) == 2 && rest[1] == "disable" && r.Method == http.MethodPost:
		s.disableTable(w, tables, rest[0])
	case len(rest) == 2 && rest[1] == "scan" && r.Method == http.MethodPost:
		s.scan(w, r, tables, rest[0])
	case len(rest) == 2 && rest[1] == "batch" && r.Method == http.MethodPost:
		s.batchWrite(w, r, tables, rest[0])
	case len(rest) == 3 && rest[1] == "rows" && r.Method == http.MethodPost:
		s.putRow(w, r, tables, rest[0], rest[2])
	case len(rest) == 3 && rest[1] == "rows" && r.Method == http.MethodGet:
		s.getRow(w, tables, rest[0], rest[2])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	}
}

type createTableRequest struct {
	Name           string   `json:"table_name"`
	ColumnFamilies []string `json:"column_families"`
}

func (s *Server) createTable(w http.ResponseWriter, r *http.Request, tables map[string]*table) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if req.Name == "" || len(req.ColumnFamilies) == 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "table name and column families are required")
		return
	}
	if _, ok := tables[req.Name]; ok {
		writeError(w, http.StatusConflict, "TABLE_EXISTS", fmt.Sprintf("table %q already exists", req.Name))
		return
	}

	families := make(map[string]bool, len(req.ColumnFamilies))
	for _, f := range req.ColumnFamilies {
		families[f] = true
	}
	tables[req.Name] = &table{
		families: families,
		rows:     make(map[string]*bigrow.Row),
	}
	writeJSON(w, struct{}{})
}

func (s *Server) listTables(w http.ResponseWriter, tables map[string]*table) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	writeJSON(w, struct {
		Tables []string `json:"tables"`
	}{Tables: names})
}

func (s *Server) disableTable(w http.ResponseWriter, tables map[string]*table, name string) {
	tbl, ok := tables[name]
	if !ok {
		writeError(w, http.StatusNotFound, "TABLE_NOT_FOUND", fmt.Sprintf("table %q does not exist", name))
		return
	}
	tbl.disabled = true
	writeJSON(w, struct{}{})
}

func (s *Server) deleteTable(w http.ResponseWriter, tables map[string]*table, name string) {
	tbl, ok := tables[name]
	if !ok {
		writeError(w, http.StatusNotFound, "TABLE_NOT_FOUND", fmt.Sprintf("table %q does not exist", name))
		return
	}
	if !tbl.disabled {
		writeError(w, http.StatusConflict, "TABLE_NOT_DISABLED", fmt.Sprintf("table %q must be disabled before delete", name))
		return
	}
	delete(tables, name)
	writeJSON(w, struct{}{})
}

type putRowRequest struct {
	Cells []bigrow.Cell `json:"cells"`
}

func (s *Server) putRow(w http.ResponseWriter, r *http.Request, tables map[string]*table, name, rowKey string) {
	tbl, ok := tables[name]
	if !ok {
		writeError(w, http.StatusNotFound, "TABLE_NOT_FOUND", fmt.Sprintf("table %q does not exist", name))
		return
	}

	var req putRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	written, err := tbl.apply(rowKey, req.Cells)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_FAMILY", err.Error())
		return
	}
	writeJSON(w, struct {
		CellsWritten int `json:"cells_written"`
	}{CellsWritten: written})
}

func (s *Server) getRow(w http.ResponseWriter, tables map[string]*table, name, rowKey string) {
	tbl, ok := tables[name]
	if !ok {
		writeError(w, http.StatusNotFound, "TABLE_NOT_FOUND", fmt.Sprintf("table %q does not exist", name))
		return
	}
	row, ok := tbl.rows[rowKey]
	if !ok {
		writeError(w, http.StatusNotFound, "ROW_NOT_FOUND", fmt.Sprintf("row %q does not exist", rowKey))
		return
	}
	writeJSON(w, row)
}

type scanRequest struct {
	StartRow  string `json:"start_row"`
	EndRow    string `json:"end_row"`
	BatchSize int    `json:"batch_size"`
	Format    string `json:"format"`
}

type scanResponse struct {
	Rows         []*bigrow.Row `json:"rows,omitempty"`
	RowsArrow    string        `json:"rows_arrow,omitempty"`
	NextStartRow string        `json:"next_start_row,omitempty"`
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request, tables map[string]*table, name string) {
	tbl, ok := tables[name]
	if !ok {
		writeError(w, http.StatusNotFound, "TABLE_NOT_FOUND", fmt.Sprintf("table %q does not exist", name))
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if req.BatchSize <= 0 {
		req.BatchSize = 100
	}

	from := sort.SearchStrings(tbl.rowKeys, req.StartRow)
	var page []*bigrow.Row
	next := ""
	for i := from; i < len(tbl.rowKeys); i++ {
		key := tbl.rowKeys[i]
		if req.EndRow != "" && key >= req.EndRow {
			break
		}
		if len(page) == req.BatchSize {
			next = key
			break
		}
		page = append(page, tbl.rows[key])
	}

	resp := scanResponse{NextStartRow: next}
	if req.Format == "arrow" {
		payload, err := encodeRowsArrow(page)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
			return
		}
		resp.RowsArrow = payload
	} else {
		resp.Rows = page
	}
	writeJSON(w, resp)
}

type batchWriteRequest struct {
	BatchId string `json:"batch_id"`
	Rows    string `json:"rows"`
}

func (s *Server) batchWrite(w http.ResponseWriter, r *http.Request, tables map[string]*table, name string) {
	tbl, ok := tables[name]
	if !ok {
		writeError(w, http.StatusNotFound, "TABLE_NOT_FOUND", fmt.Sprintf("table %q does not exist", name))
		return
	}

	var req batchWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	cells, keys, err := decodeCellsArrow(req.Rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	written := 0
	for i, cell := range cells {
		n, err := tbl.apply(keys[i], []bigrow.Cell{cell})
		if err != nil {
			writeError(w, http.StatusBadRequest, "UNKNOWN_FAMILY", err.Error())
			return
		}
		written += n
	}
	writeJSON(w, struct {
		CellsWritten int `json:"cells_written"`
	}{CellsWritten: written})
}

// apply upserts cells into the row at rowKey, keeping rowKeys sorted and
// the row's cells ordered by (family, qualifier).
func (t *table) apply(rowKey string, cells []bigrow.Cell) (int, error) {
	for _, c := range cells {
		if !t.families[c.Family] {
			return 0, fmt.Errorf("unknown column family %q", c.Family)
		}
	}

	row, ok := t.rows[rowKey]
	if !ok {
		row = &bigrow.Row{Key: rowKey}
		t.rows[rowKey] = row
		at := sort.SearchStrings(t.rowKeys, rowKey)
		t.rowKeys = append(t.rowKeys, "")
		copy(t.rowKeys[at+1:], t.rowKeys[at:])
		t.rowKeys[at] = rowKey
	}

	for _, c := range cells {
		replaced := false
		for i := range row.Cells {
			if row.Cells[i].Family == c.Family && row.Cells[i].Qualifier == c.Qualifier {
				row.Cells[i].Value = c.Value
				replaced = true
				break
			}
		}
		if !replaced {
			row.Cells = append(row.Cells, c)
		}
	}
	sort.Slice(row.Cells, func(i, j int) bool {
		if row.Cells[i].Family != row.Cells[j].Family {
			return row.Cells[i].Family < row.Cells[j].Family
		}
		return row.Cells[i].Qualifier < row.Cells[j].Qualifier
	})
	return len(cells), nil
}

var cellBatchSchema = arrow.NewSchema([]arrow.Field{
	{Name: "row_key", Type: arrow.BinaryTypes.String},
	{Name: "family", Type: arrow.BinaryTypes.String},
	{Name: "qualifier", Type: arrow.BinaryTypes.String},
	{Name: "value", Type: arrow.BinaryTypes.Binary},
}, nil)

// encodeRowsArrow flattens rows into one cell per Arrow row and returns
// the record batch as a base64 encoded IPC stream.
func encodeRowsArrow(rows []*bigrow.Row) (string, error) {
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, cellBatchSchema)
	defer b.Release()

	for _, row := range rows {
		for _, c := range row.Cells {
			b.Field(0).(*array.StringBuilder).Append(row.Key)
			b.Field(1).(*array.StringBuilder).Append(c.Family)
			b.Field(2).(*array.StringBuilder).Append(c.Qualifier)
			b.Field(3).(*array.BinaryBuilder).Append(c.Value)
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	encoder := base64.NewEncoder(base64.StdEncoding, &buf)
	writer := ipc.NewWriter(encoder, ipc.WithSchema(cellBatchSchema))
	if err := writer.Write(rec); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// decodeCellsArrow decodes a base64 encoded IPC stream into cells plus
// their row keys, in stream order.
func decodeCellsArrow(data string) ([]bigrow.Cell, []string, error) {
	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(data))
	reader, err := ipc.NewReader(decoder, ipc.WithDelayReadSchema(true))
	if err != nil {
		return nil, nil, err
	}
	defer reader.Release()

	var cells []bigrow.Cell
	var keys []string
	for reader.Next() {
		rec := reader.Record()
		rowKeys, ok := rec.Column(0).(*array.String)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected row_key column type %s", rec.Column(0).DataType())
		}
		families, ok := rec.Column(1).(*array.String)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected family column type %s", rec.Column(1).DataType())
		}
		qualifiers, ok := rec.Column(2).(*array.String)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected qualifier column type %s", rec.Column(2).DataType())
		}
		values, ok := rec.Column(3).(*array.Binary)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected value column type %s", rec.Column(3).DataType())
		}

		for i := 0; i < int(rec.NumRows()); i++ {
			keys = append(keys, rowKeys.Value(i))
			cells = append(cells, bigrow.Cell{
				Family:    families.Value(i),
				Qualifier: qualifiers.Value(i),
				Value:     append([]byte(nil), values.Value(i)...),
			})
		}
	}
	return cells, keys, reader.Err()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{Code: code, Message: message})
}
