package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/solobooks/solobooks/internal/types"
)

func TestIsExpirable(t *testing.T) {
	now := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	date := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{
			name: "expired yesterday",
			doc: Document{
				DocumentType:   types.DocumentTypeQuote,
				DocumentStatus: types.DocumentStatusSent,
				ExpiryDate:     date(2026, 8, 28),
			},
			want: true,
		},
		{
			name: "expiring today stays open all day",
			doc: Document{
				DocumentType:   types.DocumentTypeQuote,
				DocumentStatus: types.DocumentStatusSent,
				ExpiryDate:     date(2026, 8, 29),
			},
			want: false,
		},
		{
			name: "expiring tomorrow",
			doc: Document{
				DocumentType:   types.DocumentTypeQuote,
				DocumentStatus: types.DocumentStatusSent,
				ExpiryDate:     date(2026, 8, 30),
			},
			want: false,
		},
		{
			name: "accepted quote never expires",
			doc: Document{
				DocumentType:   types.DocumentTypeQuote,
				DocumentStatus: types.DocumentStatusAccepted,
				ExpiryDate:     date(2026, 8, 28),
			},
			want: false,
		},
		{
			name: "no expiry date",
			doc: Document{
				DocumentType:   types.DocumentTypeQuote,
				DocumentStatus: types.DocumentStatusSent,
			},
			want: false,
		},
		{
			name: "invoices do not expire",
			doc: Document{
				DocumentType:   types.DocumentTypeInvoice,
				DocumentStatus: types.DocumentStatusSent,
				ExpiryDate:     date(2026, 8, 28),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.IsExpirable(now))
		})
	}
}
