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

/*
Package bigrow provides a lightweight and easy-to-use client for interacting with a BigRow gateway.

# Connection

Use Open to create a connection struct. This is the major entrance to construct structs for
interacting with the gateway:

	conn := bigrow.Open(&bigrow.Config{
		Endpoint: "http://<gateway-host>:<gateway-port:-8765>",
	})
	defer conn.Close()

# Manage Tables

The admin handle manages schemas, distinct from data reads and writes:

	admin := conn.Admin()
	err := admin.CreateTable(ctx, &bigrow.TableDescriptor{
		Name:           "Hello-Bigtable",
		ColumnFamilies: []string{"cf1", "cf2"},
	})

# Read and Write Rows

Obtain a table handle to write and read cells addressed by (column family, qualifier):

	tbl := conn.Table("Hello-Bigtable")

	put := bigrow.NewPut("greeting0").AddColumn("cf1", "greeting", []byte("Hello World!"))
	if err := tbl.Put(ctx, put); err != nil {
		return err
	}

	row, err := tbl.Get(ctx, "greeting0")
	if err != nil {
		return err
	}
	value := row.Value("cf1", "greeting")

# Scan

Scanner iterates all rows of a table, or a sub-range of it, in ascending key order.
Pages are fetched lazily:

	scanner := tbl.Scanner(ctx, &bigrow.Scan{})
	defer scanner.Close()
	for row := scanner.Next(); row != nil; row = scanner.Next() {
		// use row
	}
	if err := scanner.Err(); err != nil {
		return err
	}
*/
package bigrow
