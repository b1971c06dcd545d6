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
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	bigrow "github.com/bigrowdb/bigrow-sdk/go"
)

func TestCreateTableTwice(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()

	desc := &bigrow.TableDescriptor{
		Name:           "greetings",
		ColumnFamilies: []string{"cf1", "cf2"},
	}
	require.NoError(t, conn.Admin().CreateTable(ctx, desc))

	err := conn.Admin().CreateTable(ctx, desc)
	require.Error(t, err)
	require.True(t, bigrow.IsTableExists(err))

	var gwErr *bigrow.Error
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, bigrow.CodeTableExists, gwErr.Code)
	snaps.MatchSnapshot(t, err.Error())
}

func TestCreateTableRejectsEmptyDescriptor(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()

	err := conn.Admin().CreateTable(ctx, &bigrow.TableDescriptor{Name: "no_families"})
	require.Error(t, err)
	snaps.MatchSnapshot(t, err.Error())
}

func TestTableLifecycle(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()
	admin := conn.Admin()

	require.NoError(t, admin.CreateTable(ctx, &bigrow.TableDescriptor{
		Name:           "bbb",
		ColumnFamilies: []string{"cf"},
	}))
	require.NoError(t, admin.CreateTable(ctx, &bigrow.TableDescriptor{
		Name:           "aaa",
		ColumnFamilies: []string{"cf"},
	}))

	names, err := admin.TableNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"aaa", "bbb"}, names)

	// Delete requires a preceding disable.
	err = admin.DeleteTable(ctx, "aaa")
	require.Error(t, err)
	var gwErr *bigrow.Error
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, bigrow.CodeTableNotDisabled, gwErr.Code)

	require.NoError(t, admin.DisableTable(ctx, "aaa"))
	require.NoError(t, admin.DeleteTable(ctx, "aaa"))

	require.NoError(t, admin.DropTable(ctx, "bbb"))

	names, err = admin.TableNames(ctx)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestDisableMissingTable(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()

	err := conn.Admin().DisableTable(ctx, randomName(t))
	require.Error(t, err)
	require.True(t, bigrow.IsTableNotFound(err))
}

func TestDropMissingTable(t *testing.T) {
	_, conn := startGateway(t)
	ctx := context.Background()

	err := conn.Admin().DropTable(ctx, randomName(t))
	require.Error(t, err)
	require.True(t, bigrow.IsTableNotFound(err))
}
