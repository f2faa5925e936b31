package request

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/core/common/validation"
	"github.com/nkaumov/kurs-zakat/internal/transport/formkeys"
)

// PositionDTO is one requested product line as submitted.
type PositionDTO struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type CreateRequestDTO struct {
	Positions []PositionDTO `json:"positions"`
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateStatusDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(internal.ErrCodeInvalidStatus, Statuses...)
	return v.Err()
}

// ValidPositions trims product names and drops entries with a blank name or
// a quantity below one. Order is preserved.
func ValidPositions(positions []PositionDTO) []PositionDTO {
	valid := make([]PositionDTO, 0, len(positions))
	for _, p := range positions {
		name := strings.TrimSpace(p.ProductName)
		if name == "" || p.Quantity <= 0 {
			continue
		}
		valid = append(valid, PositionDTO{ProductName: name, Quantity: p.Quantity})
	}
	return valid
}

// PositionsFromForm reads positions[<i>][product_name] and
// positions[<i>][quantity] fields ordered by index, falling back to repeated
// product_name/quantity pairs. Unparseable quantities become zero and are
// dropped later by ValidPositions.
func PositionsFromForm(values url.Values) []PositionDTO {
	byIndex := map[int]*PositionDTO{}
	for _, f := range formkeys.Collect(values, "positions", 2) {
		idx, err := strconv.Atoi(f.Segments[0])
		if err != nil || idx < 0 {
			continue
		}
		p, ok := byIndex[idx]
		if !ok {
			p = &PositionDTO{}
			byIndex[idx] = p
		}
		switch f.Segments[1] {
		case "product_name":
			p.ProductName = f.Value
		case "quantity":
			p.Quantity = atoiOrZero(f.Value)
		}
	}

	if len(byIndex) > 0 {
		indexes := make([]int, 0, len(byIndex))
		for idx := range byIndex {
			indexes = append(indexes, idx)
		}
		sort.Ints(indexes)

		positions := make([]PositionDTO, 0, len(indexes))
		for _, idx := range indexes {
			positions = append(positions, *byIndex[idx])
		}
		return positions
	}

	names := values["product_name"]
	quantities := values["quantity"]
	positions := make([]PositionDTO, 0, len(names))
	for i, name := range names {
		p := PositionDTO{ProductName: name}
		if i < len(quantities) {
			p.Quantity = atoiOrZero(quantities[i])
		}
		positions = append(positions, p)
	}
	return positions
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

type RequestsResponse struct {
	Requests []*Request `json:"requests"`
}
