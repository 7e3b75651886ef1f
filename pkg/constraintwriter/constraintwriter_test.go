// SPDX-License-Identifier: Apache-2.0

package constraintwriter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/constraintwriter"
	"github.com/Sayiza/orapgsync-sub012/pkg/model"
)

func TestDDLForeignKey(t *testing.T) {
	fk := model.NewConstraint(model.ForeignKey, "fk_orders_customer", "sales", "orders", []string{"customer_id"}).
		WithForeignKey("sales", "customers", []string{"id"}, model.Cascade)

	sql, err := constraintwriter.DDL(fk)
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE sales.orders ADD CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id) REFERENCES sales.customers (id) ON DELETE CASCADE", sql)
}

func TestDDLCheckTranslatesExpression(t *testing.T) {
	c := model.NewConstraint(model.Check, "chk_status", "sales", "orders", nil).
		WithCheckExpression("INSTR(status, 'X') > 0")

	sql, err := constraintwriter.DDL(c)
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE sales.orders ADD CONSTRAINT chk_status CHECK (strpos(status, 'X') > 0)", sql)
}

func TestFKIndexDDL(t *testing.T) {
	fk := model.NewConstraint(model.ForeignKey, "fk_orders_customer", "sales", "orders", []string{"customer_id"}).
		WithForeignKey("sales", "customers", []string{"id"}, model.NoAction)

	sql := constraintwriter.FKIndexDDL(fk)
	assert.Equal(t, "CREATE INDEX fk_orders_customer_fkidx ON sales.orders (customer_id)", sql)
}
