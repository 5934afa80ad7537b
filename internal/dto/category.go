package dto

type CategoryCreateRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type CategoryUpdateRequest struct {
	Name  *string `json:"name"`
	Type  *string `json:"type"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	CreatedAt string `json:"createdAt"`
}

type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
	Total int                `json:"total"`
}
