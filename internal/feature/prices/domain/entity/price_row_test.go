package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceRow_Validate(t *testing.T) {
	t.Parallel()

	d := decimal.RequireFromString
	valid := PriceRow{
		Symbol: "AAPL",
		Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:   d("100.5"),
		High:   d("110"),
		Low:    d("99"),
		Close:  d("105.25"),
		Volume: 1000,
	}

	tests := []struct {
		name    string
		mutate  func(p *PriceRow)
		wantErr bool
	}{
		{name: "valid bar", mutate: func(p *PriceRow) {}},
		{name: "flat bar where all prices are equal", mutate: func(p *PriceRow) {
			p.Open, p.High, p.Low, p.Close = d("10"), d("10"), d("10"), d("10")
		}},
		{name: "zero volume allowed", mutate: func(p *PriceRow) { p.Volume = 0 }},
		{name: "zero open", mutate: func(p *PriceRow) { p.Open = decimal.Zero }, wantErr: true},
		{name: "negative close", mutate: func(p *PriceRow) { p.Close = d("-1") }, wantErr: true},
		{name: "low above open", mutate: func(p *PriceRow) { p.Low = d("101") }, wantErr: true},
		{name: "high below close", mutate: func(p *PriceRow) { p.High = d("105") }, wantErr: true},
		{name: "negative volume", mutate: func(p *PriceRow) { p.Volume = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPriceRow)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
