package order_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heshamdawsha976/sen2/internal/order"
)

func TestConfirmer_Confirm(t *testing.T) {
	c := order.NewConfirmer("+20 1000000000", "", decimal.NewFromInt(350))
	o := order.Order{
		ID:              uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000")),
		CustomerName:    "Sara",
		CustomerPhone:   "0101234567",
		CustomerAddress: "Cairo",
	}

	conf := c.Confirm(o)

	assert.Contains(t, conf.Message, "#550e8400-e29b-41d4-a716-446655440000")
	assert.Contains(t, conf.Message, "350 جنيه")
	assert.Contains(t, conf.Message, "الاسم: Sara")
	assert.NotContains(t, conf.Message, "ملاحظات")

	u, err := url.Parse(conf.URL)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, conf.Message, u.Query().Get("text"))

	o.CustomerNotes = "ring twice"
	assert.Contains(t, c.Confirm(o).Message, "ملاحظات: ring twice")
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	orders := []order.Order{{
		ID:              uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000")),
		CustomerName:    "Sara",
		CustomerPhone:   "0101234567",
		CustomerAddress: "Cairo, Egypt",
		Status:          order.StatusDelivered,
	}}

	require.NoError(t, order.WriteCSV(&b, orders, nil))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "رقم الطلب,"))
	assert.Contains(t, lines[1], `"Cairo, Egypt"`)
	assert.Contains(t, lines[1], order.StatusDelivered.Label())
}
