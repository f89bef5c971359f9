package model

// レビュー。seedファイル分とユーザー投稿分がある。
type Review struct {
	ID       string `json:"id"`
	ToyID    int64  `json:"toyId"`
	UserName string `json:"userName"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Date     string `json:"date"`
}

// おもちゃごとの評価集計
type ToyRating struct {
	ToyID       int64   `json:"toyId"`
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
}
