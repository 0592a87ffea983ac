package order

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultProductName = "سيروم كيكه من سندرين بيوتي"

// Confirmation is the WhatsApp handoff for a placed order.
type Confirmation struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Confirmer renders confirmation messages addressed to the shop's WhatsApp number.
type Confirmer struct {
	number  string
	product string
	price   decimal.Decimal
}

func NewConfirmer(whatsappNumber, productName string, price decimal.Decimal) *Confirmer {
	if productName == "" {
		productName = defaultProductName
	}
	return &Confirmer{
		number:  digitsOnly(whatsappNumber),
		product: productName,
		price:   price,
	}
}

func (c *Confirmer) Confirm(o Order) Confirmation {
	var b strings.Builder
	b.WriteString("مرحباً، تم تسجيل طلبي بنجاح:\n\n")
	fmt.Fprintf(&b, "🌟 المنتج: %s\n", c.product)
	fmt.Fprintf(&b, "💰 السعر: %s جنيه (شحن مجاني)\n", c.price.String())
	fmt.Fprintf(&b, "📋 رقم الطلب: #%s\n\n", o.ID)
	b.WriteString("📋 بيانات الطلب:\n")
	fmt.Fprintf(&b, "الاسم: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "الهاتف: %s\n", o.CustomerPhone)
	fmt.Fprintf(&b, "العنوان: %s\n", o.CustomerAddress)
	if o.CustomerNotes != "" {
		fmt.Fprintf(&b, "ملاحظات: %s\n", o.CustomerNotes)
	}
	b.WriteString("\nشكراً لثقتكم في منتجاتنا! 💕")

	msg := b.String()
	return Confirmation{
		Message: msg,
		URL:     "https://wa.me/" + c.number + "?text=" + url.QueryEscape(msg),
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
