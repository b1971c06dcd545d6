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

import "net/url"

// Connection represents an open session to a BigRow gateway.
type Connection struct {
	config *Config
	http   HTTPClient
}

// Open creates a new connection.
func Open(config *Config) *Connection {
	return &Connection{
		config: config,
		http:   NewHTTPClient(config),
	}
}

// Close closes the connection.
//
// You don't typically need to call this as the garbage collector will release
// the resources when the connection is no longer referenced. However, it can be
// useful to call this if you want to release the resources immediately.
func (conn *Connection) Close() {
	conn.http.Close()
}

// Admin returns the admin handle for schema management operations.
func (conn *Connection) Admin() *Admin {
	return &Admin{conn: conn}
}

// Table returns a handle for reads and writes against the named table.
func (conn *Connection) Table(name string) *Table {
	return &Table{conn: conn, Name: name}
}

// apiURL builds a URL under /v1/namespaces/{ns}/tables for the configured
// namespace.
func (conn *Connection) apiURL(parts ...string) (*url.URL, error) {
	s := conn.config.Endpoint + "/v1/namespaces/" + url.PathEscape(conn.config.namespace()) + "/tables"
	for _, p := range parts {
		s += "/" + url.PathEscape(p)
	}
	return url.Parse(s)
}
