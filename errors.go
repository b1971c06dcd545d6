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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrorCode classifies the error responses of the BigRow gateway.
type ErrorCode string

const (
	// CodeTableExists indicates a create for a table that already exists.
	CodeTableExists ErrorCode = "TABLE_EXISTS"
	// CodeTableNotFound indicates an operation against a table that does not exist.
	CodeTableNotFound ErrorCode = "TABLE_NOT_FOUND"
	// CodeTableNotDisabled indicates a delete for a table that is still enabled.
	CodeTableNotDisabled ErrorCode = "TABLE_NOT_DISABLED"
	// CodeRowNotFound indicates a read for a row that does not exist.
	CodeRowNotFound ErrorCode = "ROW_NOT_FOUND"
	// CodeUnknownFamily indicates a write addressing a column family the
	// table was not created with.
	CodeUnknownFamily ErrorCode = "UNKNOWN_FAMILY"
)

// Error represents an error response from the BigRow gateway.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTableExists reports whether err is a TABLE_EXISTS rejection.
func IsTableExists(err error) bool {
	return hasCode(err, CodeTableExists)
}

// IsTableNotFound reports whether err is a TABLE_NOT_FOUND rejection.
func IsTableNotFound(err error) bool {
	return hasCode(err, CodeTableNotFound)
}

// IsRowNotFound reports whether err is a ROW_NOT_FOUND rejection.
func IsRowNotFound(err error) bool {
	return hasCode(err, CodeRowNotFound)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func checkStatusCodeOK(resp *http.Response) error {
	return checkStatusCode(resp, 200)
}

func checkStatusCode(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	msg := string(data)
	if err != nil {
		return fmt.Errorf("%d: %s", resp.StatusCode, msg)
	}
	var errResp Error
	if err := json.Unmarshal(data, &errResp); err != nil || errResp.Code == "" {
		return fmt.Errorf("%d: %s", resp.StatusCode, msg)
	}
	return &errResp
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
