package model

import "github.com/shopspring/decimal"

// 年齢グループ
type AgeGroup struct {
	AgeGroupID  int64  `json:"ageGroupId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// おもちゃの種類
type ToyType struct {
	TypeID      int64  `json:"typeId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// カタログAPIのおもちゃ。
// カート・注文には追加時点の値をそのまま埋め込む（後の価格変更は反映しない）。
type Toy struct {
	ToyID          int64           `json:"toyId"`
	Name           string          `json:"name"`
	Permalink      string          `json:"permalink"`
	Description    string          `json:"description"`
	TargetGroup    string          `json:"targetGroup"`
	ProductionDate string          `json:"productionDate"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	AgeGroup       *AgeGroup       `json:"ageGroup,omitempty"`
	Type           *ToyType        `json:"type,omitempty"`
}
