package presentation

import (
	"sort"

	"github.com/zjrosen/mibstore/internal/exprtable"
	"github.com/zjrosen/mibstore/internal/registry"
)

// FactoryDTO represents one registered name for presentation
type FactoryDTO struct {
	Name    string `json:"name"`
	Factory string `json:"factory"`
	Product string `json:"product"`
	Alias   bool   `json:"alias"`
}

// ResolveDTO is the outcome of resolving a colon list
type ResolveDTO struct {
	List    string `json:"list"`
	Factory string `json:"factory"`
	Product string `json:"product"`
}

// AliasDTO is a configured alias and the list it points at
type AliasDTO struct {
	Alias  string `json:"alias"`
	Target string `json:"target"`
}

// ExpressionDTO represents an expression row for presentation
type ExpressionDTO struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	Expression    string `json:"expression"`
	ValueType     string `json:"value_type"`
	Comment       string `json:"comment"`
	DeltaInterval int32  `json:"delta_interval"`
	Prefix        string `json:"prefix"`
	Errors        uint32 `json:"errors"`
	Status        string `json:"status"`
	Storage       string `json:"storage"`
}

// FromRegistryEntries converts catalog entries to DTOs. A name is an alias
// when it differs from the name of the factory it maps to.
func FromRegistryEntries(entries []registry.Entry) []FactoryDTO {
	dtos := make([]FactoryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = FactoryDTO{
			Name:    e.Name,
			Factory: e.Factory,
			Product: e.Product,
			Alias:   e.Name != e.Factory,
		}
	}
	return dtos
}

// FromAliases converts configured aliases to DTOs sorted by alias.
func FromAliases(aliases map[string]string) []AliasDTO {
	dtos := make([]AliasDTO, 0, len(aliases))
	for alias, target := range aliases {
		dtos = append(dtos, AliasDTO{Alias: alias, Target: target})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Alias < dtos[j].Alias })
	return dtos
}

// FromRow converts an expression row to a DTO
func FromRow(row *exprtable.Row) ExpressionDTO {
	return ExpressionDTO{
		Owner:         row.Owner,
		Name:          row.Name,
		Expression:    row.Expression,
		ValueType:     row.ValueType.String(),
		Comment:       row.Comment,
		DeltaInterval: row.DeltaInterval,
		Prefix:        exprtable.FormatOID(row.Prefix),
		Errors:        row.Errors,
		Status:        row.Status.String(),
		Storage:       row.Storage.String(),
	}
}

// FromRows converts expression rows to DTOs, keeping their order
func FromRows(rows []*exprtable.Row) []ExpressionDTO {
	dtos := make([]ExpressionDTO, len(rows))
	for i, row := range rows {
		dtos[i] = FromRow(row)
	}
	return dtos
}
