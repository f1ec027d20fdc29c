package holiday

type CreateHolidayRequest struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date" binding:"required"`
	Type string `json:"type" binding:"required,oneof=public company"`
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}
