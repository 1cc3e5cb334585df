package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// LotConsumption records how much of a consumption request one lot satisfied
type LotConsumption struct {
	LotID         uuid.UUID       `json:"lot_id"`
	LotNumber     string          `json:"lot_number"`
	QuantityTaken decimal.Decimal `json:"quantity_taken"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Depletes      bool            `json:"depletes"` // true if this take empties the lot
}

// AllocationPlan is the computed result of walking lots in FIFO order.
// It is produced against a snapshot; no lot is mutated during planning, so
// a plan that cannot be fulfilled leaves every lot at its pre-call value.
type AllocationPlan struct {
	Consumptions        []LotConsumption
	TotalQuantity       decimal.Decimal
	TotalCost           decimal.Decimal
	WeightedAverageCost decimal.Decimal
}

// SortLotsFIFO orders lots oldest first by received date, breaking ties
// with the database-assigned sequence so that two lots received within the
// same timestamp tick still consume in insertion order.
func SortLotsFIFO(lots []StockLot) {
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].ReceivedAt.Equal(lots[j].ReceivedAt) {
			return lots[i].ReceivedAt.Before(lots[j].ReceivedAt)
		}
		return lots[i].Sequence < lots[j].Sequence
	})
}

// PlanFIFOConsumption selects lots in strict arrival order and splits the
// requested quantity across them, never planning to over-draw a lot.
// If the available lots cannot cover the request the plan fails with
// INSUFFICIENT_STOCK and nothing is allocated - all-or-nothing.
func PlanFIFOConsumption(requested decimal.Decimal, lots []StockLot) (*AllocationPlan, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	available := make([]StockLot, 0, len(lots))
	for _, lot := range lots {
		if lot.IsAvailable() {
			available = append(available, lot)
		}
	}
	SortLotsFIFO(available)

	consumptions := make([]LotConsumption, 0, len(available))
	stillNeeded := requested
	totalCost := decimal.Zero

	for _, lot := range available {
		if stillNeeded.IsZero() {
			break
		}
		take := decimal.Min(stillNeeded, lot.RemainingQuantity)
		cost := take.Mul(lot.UnitCost)
		consumptions = append(consumptions, LotConsumption{
			LotID:         lot.ID,
			LotNumber:     lot.LotNumber,
			QuantityTaken: take,
			UnitCost:      lot.UnitCost,
			TotalCost:     cost,
			Depletes:      take.Equal(lot.RemainingQuantity),
		})
		totalCost = totalCost.Add(cost)
		stillNeeded = stillNeeded.Sub(take)
	}

	if stillNeeded.GreaterThan(decimal.Zero) {
		return nil, shared.ErrInsufficientStock
	}

	var weightedAvg decimal.Decimal
	if requested.GreaterThan(decimal.Zero) {
		weightedAvg = totalCost.Div(requested).Round(4)
	}

	return &AllocationPlan{
		Consumptions:        consumptions,
		TotalQuantity:       requested,
		TotalCost:           totalCost,
		WeightedAverageCost: weightedAvg,
	}, nil
}

// AvailableTotal sums the remaining quantity over consumable lots
func AvailableTotal(lots []StockLot) decimal.Decimal {
	total := decimal.Zero
	for _, lot := range lots {
		if lot.IsAvailable() {
			total = total.Add(lot.RemainingQuantity)
		}
	}
	return total
}
