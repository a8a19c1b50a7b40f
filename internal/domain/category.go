package domain

type Category struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}
