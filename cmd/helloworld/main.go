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

// A minimal application that connects to a BigRow gateway and performs
// some basic operations: create a table, write some rows, read one row
// back, scan all rows. On failure it makes a best-effort attempt to drop
// the table and exits non-zero.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	bigrow "github.com/bigrowdb/bigrow-sdk/go"
)

const (
	gatewayEndpoint = "http://10.0.0.10:8765"
	namespace       = "default"

	retries    = 3
	retryPause = time.Second

	tableName     = "Hello-Bigtable"
	columnFamily1 = "cf1"
	columnFamily2 = "cf2"
	columnName    = "greeting"
)

// Write some friendly greetings to the table.
var greetings = []string{"Hello World!", "Hello Cloud Bigtable!", "Hello HBase!", "Hi there", "Cz!"}

func newConfig() *bigrow.Config {
	return &bigrow.Config{
		Endpoint:   gatewayEndpoint,
		Namespace:  namespace,
		Retries:    retries,
		RetryPause: retryPause,
	}
}

func main() {
	ctx := context.Background()
	cfg := newConfig()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "helloworld: %v\n", err)
		cleanup(ctx, cfg, os.Stdout)
		os.Exit(1)
	}
	os.Exit(0)
}

// run executes the demo sequence. Each step depends on the previous one
// succeeding, so the first error aborts the rest.
func run(ctx context.Context, cfg *bigrow.Config, out io.Writer) error {
	logger := log.New(out, "helloworld: ", 0)
	logger.Printf("connect to %s", cfg.Endpoint)

	conn := bigrow.Open(cfg)
	defer conn.Close()

	// The admin handle lets us create, manage and delete tables.
	admin := conn.Admin()

	desc := &bigrow.TableDescriptor{
		Name:           tableName,
		ColumnFamilies: []string{columnFamily1, columnFamily2},
	}
	logger.Printf("create table %s", desc.Name)
	if err := admin.CreateTable(ctx, desc); err != nil {
		return fmt.Errorf("create table %s: %w", desc.Name, err)
	}

	logger.Printf("get table %s", tableName)
	tbl := conn.Table(tableName)

	logger.Printf("write some greetings to the table")
	for i, greeting := range greetings {
		// Sequential keys keep the demo readable, but they concentrate
		// load on one node in production since rows are stored sorted
		// by key.
		rowKey := fmt.Sprintf("greeting%d", i)

		put := bigrow.NewPut(rowKey).AddColumn(columnFamily1, columnName, []byte(greeting))
		if err := tbl.Put(ctx, put); err != nil {
			return fmt.Errorf("write row %s: %w", rowKey, err)
		}
		put2 := bigrow.NewPut(rowKey).AddColumn(columnFamily2, columnName, []byte(greeting))
		if err := tbl.Put(ctx, put2); err != nil {
			return fmt.Errorf("write row %s: %w", rowKey, err)
		}
	}

	rowKey := "greeting0"
	logger.Printf("get a single greeting by row key")
	row, err := tbl.Get(ctx, rowKey)
	if err != nil {
		return fmt.Errorf("get row %s: %w", rowKey, err)
	}
	fmt.Fprintf(out, "\t%s = %s, %s\n", rowKey,
		row.Value(columnFamily1, columnName), row.Value(columnFamily2, columnName))

	logger.Printf("scan for all greetings:")
	scanner := tbl.Scanner(ctx, &bigrow.Scan{})
	defer scanner.Close()
	for row := scanner.Next(); row != nil; row = scanner.Next() {
		fmt.Fprintf(out, "\t%s\n", row.Value(columnFamily1, columnName))
		fmt.Fprintf(out, "\t%s\n", row.Value(columnFamily2, columnName))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan table %s: %w", tableName, err)
	}

	return nil
}

// cleanup makes a best-effort attempt to drop the demo table after a
// failed run, on a fresh connection. Errors here are logged and then
// dropped so cleanup can never mask the original failure.
func cleanup(ctx context.Context, cfg *bigrow.Config, out io.Writer) {
	logger := log.New(out, "helloworld: ", 0)
	logger.Printf("clean up table %s", tableName)

	conn := bigrow.Open(cfg)
	defer conn.Close()

	if err := conn.Admin().DropTable(ctx, tableName); err != nil {
		logger.Printf("clean up failed, giving up: %v", err)
	}
}
