// SPDX-License-Identifier: Apache-2.0

package viewwriter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sayiza/orapgsync-sub012/pkg/model"
	"github.com/Sayiza/orapgsync-sub012/pkg/viewwriter"
)

func sampleView() model.ViewMetadata {
	return model.NewView("sales", "active_customers", []model.ViewColumn{
		{Name: "id", Type: "numeric"},
		{Name: "name", Type: "text"},
	}, "SELECT id, name FROM customers WHERE active = 1")
}

func TestStubDDL(t *testing.T) {
	sql := viewwriter.StubDDL(sampleView())
	assert.Equal(t, "CREATE VIEW sales.active_customers AS SELECT NULL::numeric AS id, NULL::text AS name WHERE false", sql)
}

func TestImplementationDDL(t *testing.T) {
	sql := viewwriter.ImplementationDDL(sampleView(), "SELECT id, name FROM sales.customers WHERE active = 1")
	assert.Equal(t, "CREATE OR REPLACE VIEW sales.active_customers AS SELECT c0::numeric AS id, c1::text AS name FROM (SELECT id, name FROM sales.customers WHERE active = 1) AS subq(c0, c1)", sql)
}
