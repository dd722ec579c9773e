package fred

type fredObservationsResponse struct {
	ObservationStart string            `json:"observation_start"`
	ObservationEnd   string            `json:"observation_end"`
	Units            string            `json:"units"`
	Count            int               `json:"count"`
	Observations     []fredObservation `json:"observations"`
	ErrorCode        int               `json:"error_code"`
	ErrorMessage     string            `json:"error_message"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}
