package model

// Trace and recall payloads, shaped for the front end.

type BatchInfoResponse struct {
	BatchNumber string `json:"batch_number"`
	Product     string `json:"product"`
	Expiry      string `json:"expiry"`
	Mfg         string `json:"mfg"`
}

type LocationResponse struct {
	Bin    string `json:"bin"`
	Qty    int    `json:"qty"`
	Status string `json:"status"`
}

type SalesTrailEntry struct {
	OrderID  string `json:"order_id"`
	Customer string `json:"customer"`
	Date     string `json:"date"`
	QtySold  int    `json:"qty_sold"`
}

type TraceResponse struct {
	BatchInfo        BatchInfoResponse  `json:"batch_info"`
	CurrentLocations []LocationResponse `json:"current_locations"`
	SalesTrail       []SalesTrailEntry  `json:"sales_trail"`
}

type RecallResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	AffectedCustomers int    `json:"affected_customers"`
}
