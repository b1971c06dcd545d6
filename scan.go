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

// ScanFormat defines the transfer format of scan pages.
type ScanFormat string

const (
	// ScanFormatJSON transfers pages as plain JSON rows.
	ScanFormatJSON ScanFormat = "json"
	// ScanFormatArrow transfers pages as BASE64 encoded Arrow IPC batches.
	ScanFormatArrow ScanFormat = "arrow"
)

const defaultScanBatchSize = 100

// Scan describes a scan over a table or a sub-range of it.
type Scan struct {
	// StartRow is the first row key included. Empty starts at the
	// beginning of the table.
	StartRow string
	// EndRow is the first row key excluded. Empty scans to the end of the
	// table.
	EndRow string
	// Limit caps the total number of rows returned. Zero means no cap.
	Limit int
	// BatchSize is the number of rows fetched per round trip.
	BatchSize int
	// Format is the transfer format of the pages.
	Format ScanFormat
}

type scanRequest struct {
	StartRow  string     `json:"start_row,omitempty"`
	EndRow    string     `json:"end_row,omitempty"`
	BatchSize int        `json:"batch_size"`
	Format    ScanFormat `json:"format"`
}

type scanResponse struct {
	Rows         []*Row `json:"rows"`
	RowsArrow    string `json:"rows_arrow,omitempty"`
	NextStartRow string `json:"next_start_row,omitempty"`
}

// scanAPI defines interfaces under /v1/namespaces/{ns}/tables/{table}/scan.
type scanAPI interface {
	// scanPage fetches one page of a scan.
	scanPage(ctx context.Context, table string, req *scanRequest) (*scanResponse, error)
}

var _ scanAPI = (*Connection)(nil)

// Scanner starts a scan and returns its result scanner.
func (t *Table) Scanner(ctx context.Context, scan *Scan) *ResultScanner {
	if scan == nil {
		scan = &Scan{}
	}

	format := scan.Format
	if format == "" {
		format = ScanFormatJSON
	}
	batchSize := scan.BatchSize
	if batchSize <= 0 {
		batchSize = defaultScanBatchSize
	}
	remaining := -1
	if scan.Limit > 0 {
		remaining = scan.Limit
	}

	return &ResultScanner{
		ctx:   ctx,
		conn:  t.conn,
		table: t.Name,
		req: &scanRequest{
			StartRow:  scan.StartRow,
			EndRow:    scan.EndRow,
			BatchSize: batchSize,
			Format:    format,
		},
		remaining: remaining,
	}
}

// ResultScanner iterates the rows of a scan in ascending key order.
//
// The sequence is produced lazily, one page per round trip, and is not
// restartable.
type ResultScanner struct {
	ctx   context.Context
	conn  *Connection
	table string

	req       *scanRequest
	remaining int // rows left under Limit, -1 when unlimited

	buf  []*Row
	done bool
	err  error
}

// Next returns the next row of the scan, or nil once the scan is exhausted
// or has failed. Check Err after the first nil row.
func (s *ResultScanner) Next() *Row {
	if s.err != nil || s.remaining == 0 {
		return nil
	}

	for len(s.buf) == 0 {
		if s.done {
			return nil
		}
		if err := s.fetchPage(); err != nil {
			s.err = err
			s.done = true
			return nil
		}
	}

	row := s.buf[0]
	s.buf = s.buf[1:]
	if s.remaining > 0 {
		s.remaining--
	}
	return row
}

// Err returns the first error encountered during iteration, if any.
func (s *ResultScanner) Err() error {
	return s.err
}

// Close terminates the scan early. It is safe to call more than once.
func (s *ResultScanner) Close() {
	s.done = true
	s.buf = nil
}

func (s *ResultScanner) fetchPage() error {
	req := *s.req
	if s.remaining > 0 && s.remaining < req.BatchSize {
		req.BatchSize = s.remaining
	}

	resp, err := s.conn.scanPage(s.ctx, s.table, &req)
	if err != nil {
		return err
	}

	rows := resp.Rows
	if req.Format == ScanFormatArrow && resp.RowsArrow != "" {
		rows, err = decodeRowBatch([]byte(resp.RowsArrow))
		if err != nil {
			return err
		}
	}

	s.buf = rows
	if resp.NextStartRow == "" || len(rows) == 0 {
		s.done = true
	} else {
		s.req.StartRow = resp.NextStartRow
	}
	return nil
}

func (conn *Connection) scanPage(ctx context.Context, table string, request *scanRequest) (*scanResponse, error) {
	req, err := conn.apiURL(table, "scan")
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
	var respData scanResponse
	err = json.Unmarshal(data, &respData)
	return &respData, err
}
