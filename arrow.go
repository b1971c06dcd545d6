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
	"bytes"
	"encoding/base64"
	"errors"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// cellBatchSchema is the Arrow schema batch writes and arrow-format scan
// pages are transferred with: one cell per Arrow row.
var cellBatchSchema = arrow.NewSchema([]arrow.Field{
	{Name: "row_key", Type: arrow.BinaryTypes.String},
	{Name: "family", Type: arrow.BinaryTypes.String},
	{Name: "qualifier", Type: arrow.BinaryTypes.String},
	{Name: "value", Type: arrow.BinaryTypes.Binary},
}, nil)

// encodeCellBatch encodes the cells of the given puts into a single record
// batch, returned as a base64 encoded Arrow IPC stream.
func encodeCellBatch(puts []*Put) ([]byte, error) {
	if len(puts) == 0 {
		return nil, errors.New("cannot encode empty batch")
	}

	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, cellBatchSchema)
	defer b.Release()

	for _, p := range puts {
		for _, c := range p.cells {
			b.Field(0).(*array.StringBuilder).Append(p.RowKey)
			b.Field(1).(*array.StringBuilder).Append(c.Family)
			b.Field(2).(*array.StringBuilder).Append(c.Qualifier)
			b.Field(3).(*array.BinaryBuilder).Append(c.Value)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()
	return encodeRecordBatches(cellBatchSchema, []arrow.Record{rec})
}

// encodeRecordBatches encodes the given record batches into a base64 encoded byte slice.
func encodeRecordBatches(schema *arrow.Schema, batches []arrow.Record) (payload []byte, err error) {
	var buf bytes.Buffer
	defer func() {
		if err == nil {
			payload = buf.Bytes()
		}
	}()

	encoder := base64.NewEncoder(base64.StdEncoding, &buf)
	defer func() {
		err = errors.Join(err, encoder.Close())
	}()

	writer := ipc.NewWriter(encoder, ipc.WithSchema(schema))
	defer func() {
		err = errors.Join(err, writer.Close())
	}()

	for _, batch := range batches {
		if err := writer.Write(batch); err != nil {
			return nil, err
		}
	}
	return
}

// decodeRowBatch decodes a base64 encoded Arrow IPC stream into rows,
// grouping consecutive cells that share a row key.
func decodeRowBatch(data []byte) ([]*Row, error) {
	decoder := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(data))
	reader, err := ipc.NewReader(decoder, ipc.WithDelayReadSchema(true))
	if err != nil {
		return nil, err
	}
	defer reader.Release()

	var rows []*Row
	for reader.Next() {
		rec := reader.Record()
		keys, ok := rec.Column(0).(*array.String)
		if !ok {
			return nil, errors.New("unexpected row_key column type")
		}
		families, ok := rec.Column(1).(*array.String)
		if !ok {
			return nil, errors.New("unexpected family column type")
		}
		qualifiers, ok := rec.Column(2).(*array.String)
		if !ok {
			return nil, errors.New("unexpected qualifier column type")
		}
		values, ok := rec.Column(3).(*array.Binary)
		if !ok {
			return nil, errors.New("unexpected value column type")
		}

		for i := 0; i < int(rec.NumRows()); i++ {
			key := keys.Value(i)
			if len(rows) == 0 || rows[len(rows)-1].Key != key {
				rows = append(rows, &Row{Key: key})
			}
			row := rows[len(rows)-1]
			row.Cells = append(row.Cells, Cell{
				Family:    families.Value(i),
				Qualifier: qualifiers.Value(i),
				Value:     append([]byte(nil), values.Value(i)...),
			})
		}
	}
	return rows, reader.Err()
}
