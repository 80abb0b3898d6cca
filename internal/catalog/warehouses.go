package catalog

import "sort"

// Warehouse is a SanMar distribution center.
type Warehouse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var warehouses = []Warehouse{
	{ID: "1", Name: "Seattle, WA"},
	{ID: "2", Name: "Cincinnati, OH"},
	{ID: "3", Name: "Dallas, TX"},
	{ID: "4", Name: "Reno, NV"},
	{ID: "5", Name: "Robbinsville, NJ"},
	{ID: "6", Name: "Jacksonville, FL"},
	{ID: "7", Name: "Minneapolis, MN"},
	{ID: "12", Name: "Phoenix, AZ"},
	{ID: "31", Name: "Richmond, VA"},
}

var warehouseByID = func() map[string]Warehouse {
	m := make(map[string]Warehouse, len(warehouses))
	for _, w := range warehouses {
		m[w.ID] = w
	}
	return m
}()

// Warehouses returns the distribution centers in display order.
func Warehouses() []Warehouse {
	out := make([]Warehouse, len(warehouses))
	copy(out, warehouses)
	return out
}

// WarehouseIDs returns the ids in display order.
func WarehouseIDs() []string {
	ids := make([]string, len(warehouses))
	for i, w := range warehouses {
		ids[i] = w.ID
	}
	return ids
}

// WarehouseName returns a display name, or "Warehouse <id>" for unknown ids.
func WarehouseName(id string) string {
	if w, ok := warehouseByID[id]; ok {
		return w.Name
	}
	return "Warehouse " + id
}

// SortWarehouseIDs orders ids by display order, unknown ids last.
func SortWarehouseIDs(ids []string) {
	rank := make(map[string]int, len(warehouses))
	for i, w := range warehouses {
		rank[w.ID] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ri, iok := rank[ids[i]]
		rj, jok := rank[ids[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		}
		return ids[i] < ids[j]
	})
}
