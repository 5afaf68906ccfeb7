package model

// ===================================
// RESPONSE DTOs (catalog read contract)
// ===================================

type ManufacturerResponse struct {
	Name string `json:"name"`
}

type ProductResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	SKUCode           string               `json:"sku_code"`
	Composition       *string              `json:"composition"`
	BaseUOM           string               `json:"base_uom"`
	RequiresColdChain bool                 `json:"requires_cold_chain"`
	MaxTemp           *float64             `json:"max_temp"`
	Manufacturer      ManufacturerResponse `json:"manufacturer"`
}

func (p *Product) ToResponse() ProductResponse {
	resp := ProductResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		SKUCode:           p.SKUCode,
		Composition:       p.Composition,
		BaseUOM:           p.BaseUOM,
		RequiresColdChain: p.RequiresColdChain,
		MaxTemp:           p.MaxTemp,
	}
	if p.Manufacturer != nil {
		resp.Manufacturer = ManufacturerResponse{Name: p.Manufacturer.Name}
	}
	return resp
}

func ToProductResponseList(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, products[i].ToResponse())
	}
	return out
}

type ManufacturerDetailResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       *string `json:"address"`
	LicenseNumber *string `json:"license_number"`
	IsActive      bool    `json:"is_active"`
}

func (m *Manufacturer) ToResponse() ManufacturerDetailResponse {
	return ManufacturerDetailResponse{
		ID:            m.ID.String(),
		Name:          m.Name,
		Address:       m.Address,
		LicenseNumber: m.LicenseNumber,
		IsActive:      m.IsActive,
	}
}
