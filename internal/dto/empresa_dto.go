package dto

// PreferenciasImpresionRequest updates the receipt formatting preferences of
// the empresa — presentation settings only, consumed by the ticket worker.
type PreferenciasImpresionRequest struct {
	PapelAnchoMM    *int    `json:"papel_ancho_mm"   validate:"omitempty,min=40,max=210"`
	FuenteTamano    *int    `json:"fuente_tamano"    validate:"omitempty,min=6,max=14"`
	MargenMM        *int    `json:"margen_mm"        validate:"omitempty,min=0,max=20"`
	ImprimirLogo    *bool   `json:"imprimir_logo"`
	CopiasTicket    *int    `json:"copias_ticket"    validate:"omitempty,min=1,max=5"`
	AutoImprimir    *bool   `json:"auto_imprimir"`
	NombreImpresora *string `json:"nombre_impresora" validate:"omitempty,max=120"`
}

type PreferenciasImpresionResponse struct {
	PapelAnchoMM    int    `json:"papel_ancho_mm"`
	FuenteTamano    int    `json:"fuente_tamano"`
	MargenMM        int    `json:"margen_mm"`
	ImprimirLogo    bool   `json:"imprimir_logo"`
	CopiasTicket    int    `json:"copias_ticket"`
	AutoImprimir    bool   `json:"auto_imprimir"`
	NombreImpresora string `json:"nombre_impresora"`
}
