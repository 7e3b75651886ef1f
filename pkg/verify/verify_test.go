// SPDX-License-Identifier: Apache-2.0

package verify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/connector"
	"github.com/Sayiza/orapgsync-sub012/pkg/verify"
)

type fakeConn struct {
	responses map[string][]connector.Row
}

func (f *fakeConn) Query(ctx context.Context, query string, args ...any) ([]connector.Row, error) {
	for key, rows := range f.responses {
		if containsAll(query, key) {
			return rows, nil
		}
	}
	return nil, nil
}
func (f *fakeConn) Exec(ctx context.Context, query string, args ...any) error { return nil }
func (f *fakeConn) BeginTx(ctx context.Context) (connector.Tx, error)         { return nil, nil }
func (f *fakeConn) Close() error                                             { return nil }

func containsAll(haystack, needle string) bool {
	return len(needle) > 0 && len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestRoutinesClassifiesStubAndImplemented(t *testing.T) {
	conn := &fakeConn{responses: map[string][]connector.Row{
		"pg_proc": {
			{"schema": "hr", "name": "total_for", "source": "BEGIN\n  RETURN NULL;\nEND;"},
			{"schema": "hr", "name": "apply_credit", "source": "BEGIN\n  UPDATE invoices SET amount = amount - 1;\nEND;"},
		},
	}}

	v := verify.New(conn)
	findings, err := v.Routines(context.Background(), []verify.QualifiedName{
		{Schema: "hr", Name: "total_for"},
		{Schema: "hr", Name: "apply_credit"},
		{Schema: "hr", Name: "missing_func"},
	})
	require.NoError(t, err)
	require.Len(t, findings, 3)

	assert.Equal(t, verify.StatusStub, findings[0].Status)
	assert.Equal(t, verify.StatusImplemented, findings[1].Status)
	assert.Equal(t, verify.StatusMissing, findings[2].Status)
}

func TestViewsDetectsStubMarker(t *testing.T) {
	conn := &fakeConn{responses: map[string][]connector.Row{
		"information_schema.views": {
			{"schema": "hr", "name": "active_employees", "definition": "SELECT id FROM hr.employees WHERE false"},
		},
	}}

	v := verify.New(conn)
	findings, err := v.Views(context.Background(), []verify.QualifiedName{{Schema: "hr", Name: "active_employees"}})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, verify.StatusStub, findings[0].Status)
}
