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

package bigrow_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	bigrow "github.com/bigrowdb/bigrow-sdk/go"
)

func newTable(t *testing.T, conn *bigrow.Connection, families ...string) *bigrow.Table {
	name := randomName(t)
	err := conn.Admin().CreateTable(context.Background(), &bigrow.TableDescriptor{
		Name:           name,
		ColumnFamilies: families,
	})
	require.NoError(t, err)
	return conn.Table(name)
}

func TestPutGet(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1", "cf2")

	put := bigrow.NewPut("greeting0").AddColumn("cf1", "greeting", []byte("Hello World!"))
	require.NoError(t, tbl.Put(ctx, put))
	put2 := bigrow.NewPut("greeting0").AddColumn("cf2", "greeting", []byte("Hello World!"))
	require.NoError(t, tbl.Put(ctx, put2))

	row, err := tbl.Get(ctx, "greeting0")
	require.NoError(t, err)
	require.Equal(t, "greeting0", row.Key)
	require.Equal(t, "Hello World!", string(row.Value("cf1", "greeting")))
	require.Equal(t, "Hello World!", string(row.Value("cf2", "greeting")))

	// A cell the row does not have yields a nil value, not an error.
	require.Nil(t, row.Value("cf1", "missing"))
	require.Nil(t, row.Value("cf3", "greeting"))
}

func TestPutOverwritesCell(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	require.NoError(t, tbl.Put(ctx, bigrow.NewPut("k").AddColumn("cf1", "q", []byte("old"))))
	require.NoError(t, tbl.Put(ctx, bigrow.NewPut("k").AddColumn("cf1", "q", []byte("new"))))

	row, err := tbl.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, row.Cells, 1)
	require.Equal(t, "new", string(row.Value("cf1", "q")))
}

func TestPutEmpty(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	require.Error(t, tbl.Put(ctx, bigrow.NewPut("k")))
}

func TestPutUnknownFamily(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	err := tbl.Put(ctx, bigrow.NewPut("k").AddColumn("nope", "q", []byte("v")))
	require.Error(t, err)

	var gwErr *bigrow.Error
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, bigrow.CodeUnknownFamily, gwErr.Code)
}

func TestGetMissingRow(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	row, err := tbl.Get(ctx, "nothing-here")
	require.NoError(t, err)
	require.Equal(t, "nothing-here", row.Key)
	require.Empty(t, row.Cells)
	require.Nil(t, row.Value("cf1", "q"))
}

func TestGetMissingTable(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()

	_, err := conn.Table(randomName(t)).Get(ctx, "k")
	require.Error(t, err)
	require.True(t, bigrow.IsTableNotFound(err))
}

func TestScanOrderAndPaging(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	faker := gofakeit.New(42)
	values := make(map[string]string)
	for i := 24; i >= 0; i-- { // write in descending order on purpose
		key := fmt.Sprintf("row%02d", i)
		values[key] = faker.Sentence(3)
		put := bigrow.NewPut(key).AddColumn("cf1", "data", []byte(values[key]))
		require.NoError(t, tbl.Put(ctx, put))
	}

	expected := make([]string, 0, len(values))
	for key := range values {
		expected = append(expected, key)
	}
	sort.Strings(expected)

	// A batch size that does not divide the row count forces a short
	// final page.
	scanner := tbl.Scanner(ctx, &bigrow.Scan{BatchSize: 7})
	defer scanner.Close()

	var got []string
	for row := scanner.Next(); row != nil; row = scanner.Next() {
		got = append(got, row.Key)
		require.Equal(t, values[row.Key], string(row.Value("cf1", "data")))
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, expected, got)
}

func TestScanOrderIsLexicographic(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	for i := 0; i <= 10; i++ {
		put := bigrow.NewPut(fmt.Sprintf("greeting%d", i)).AddColumn("cf1", "greeting", []byte("hi"))
		require.NoError(t, tbl.Put(ctx, put))
	}

	scanner := tbl.Scanner(ctx, nil)
	defer scanner.Close()

	var got []string
	for row := scanner.Next(); row != nil; row = scanner.Next() {
		got = append(got, row.Key)
	}
	require.NoError(t, scanner.Err())
	// "greeting10" sorts before "greeting2": keys are plain strings.
	require.Equal(t, []string{
		"greeting0", "greeting1", "greeting10", "greeting2", "greeting3",
		"greeting4", "greeting5", "greeting6", "greeting7", "greeting8",
		"greeting9",
	}, got)
}

func TestScanRange(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	for i := 0; i < 10; i++ {
		put := bigrow.NewPut(fmt.Sprintf("row%02d", i)).AddColumn("cf1", "q", []byte("v"))
		require.NoError(t, tbl.Put(ctx, put))
	}

	scanner := tbl.Scanner(ctx, &bigrow.Scan{StartRow: "row03", EndRow: "row07"})
	defer scanner.Close()

	var got []string
	for row := scanner.Next(); row != nil; row = scanner.Next() {
		got = append(got, row.Key)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, []string{"row03", "row04", "row05", "row06"}, got)
}

func TestScanLimit(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	for i := 0; i < 10; i++ {
		put := bigrow.NewPut(fmt.Sprintf("row%02d", i)).AddColumn("cf1", "q", []byte("v"))
		require.NoError(t, tbl.Put(ctx, put))
	}

	scanner := tbl.Scanner(ctx, &bigrow.Scan{Limit: 3, BatchSize: 2})
	defer scanner.Close()

	var got []string
	for row := scanner.Next(); row != nil; row = scanner.Next() {
		got = append(got, row.Key)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, []string{"row00", "row01", "row02"}, got)
}

func TestScanArrowFormat(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1", "cf2")

	faker := gofakeit.New(7)
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("row%d", i)
		put := bigrow.NewPut(key).
			AddColumn("cf1", "q", []byte(faker.Word())).
			AddColumn("cf2", "q", []byte(faker.Word()))
		require.NoError(t, tbl.Put(ctx, put))
	}

	collect := func(format bigrow.ScanFormat) []*bigrow.Row {
		scanner := tbl.Scanner(ctx, &bigrow.Scan{Format: format, BatchSize: 2})
		defer scanner.Close()
		var rows []*bigrow.Row
		for row := scanner.Next(); row != nil; row = scanner.Next() {
			rows = append(rows, row)
		}
		require.NoError(t, scanner.Err())
		return rows
	}

	jsonRows := collect(bigrow.ScanFormatJSON)
	arrowRows := collect(bigrow.ScanFormatArrow)
	require.Equal(t, jsonRows, arrowRows)
	require.Len(t, arrowRows, 5)
}

func TestScanEmptyTable(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	tbl := newTable(t, conn, "cf1")

	scanner := tbl.Scanner(ctx, nil)
	defer scanner.Close()
	require.Nil(t, scanner.Next())
	require.NoError(t, scanner.Err())
}

func TestScanMissingTable(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()

	scanner := conn.Table(randomName(t)).Scanner(ctx, nil)
	defer scanner.Close()
	require.Nil(t, scanner.Next())
	require.Error(t, scanner.Err())
	require.True(t, bigrow.IsTableNotFound(scanner.Err()))
}
