package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

func TestAllocateCheapestFirst(t *testing.T) {
	rows := []pricing.SizeQuantity{
		{Size: "XL", Quantity: 12, AdditionalPrice: 1000},
		{Size: "M", Quantity: 12, AdditionalPrice: 0},
	}
	got := pricing.Allocate(rows, 12)
	// The surcharge-free row absorbs the whole dozen pool before the
	// pricier row receives anything.
	require.Equal(t, []int{0, 12}, got)
}

func TestAllocateSpillsToNextCheapest(t *testing.T) {
	rows := []pricing.SizeQuantity{
		{Size: "S", Quantity: 4, AdditionalPrice: 0},
		{Size: "L", Quantity: 10, AdditionalPrice: 1500},
		{Size: "XXL", Quantity: 10, AdditionalPrice: 4000},
	}
	got := pricing.Allocate(rows, 12)
	require.Equal(t, []int{4, 8, 0}, got)
}

func TestAllocateStableTieBreak(t *testing.T) {
	rows := []pricing.SizeQuantity{
		{Size: "M", Quantity: 10, AdditionalPrice: 0},
		{Size: "L", Quantity: 10, AdditionalPrice: 0},
	}
	got := pricing.Allocate(rows, 12)
	// Same surcharge: the earlier row wins the tie.
	require.Equal(t, []int{10, 2}, got)
}

func TestAllocateExactCap(t *testing.T) {
	rows := []pricing.SizeQuantity{
		{Size: "M", Quantity: 9, AdditionalPrice: 0},
		{Size: "L", Quantity: 9, AdditionalPrice: 500},
	}
	got := pricing.Allocate(rows, 12)
	total := 0
	for _, n := range got {
		total += n
	}
	require.Equal(t, 12, total)
}

func TestAllocateZeroCap(t *testing.T) {
	rows := []pricing.SizeQuantity{{Size: "M", Quantity: 5}}
	require.Equal(t, []int{0}, pricing.Allocate(rows, 0))
}

func TestAllocateSkipsEmptyRows(t *testing.T) {
	rows := []pricing.SizeQuantity{
		{Size: "S", Quantity: 0, AdditionalPrice: 0},
		{Size: "M", Quantity: 12, AdditionalPrice: 1000},
	}
	require.Equal(t, []int{0, 12}, pricing.Allocate(rows, 12))
}
