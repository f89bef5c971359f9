package usecase

import (
	"errors"
	"fmt"
)

var (
	//400 不正なステータス
	ErrInvalidStatus = errors.New("invalid status")
	//401 ログインが必要
	ErrUnauthorized = errors.New("unauthorized")
	//409 既に登録済み
	ErrEmailAlreadyExists = errors.New("email already exists")
	//401 メールまたはパスワードが違う
	ErrInvalidCredentials = errors.New("invalid credentials")
	//400 入力不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	//403 届いていないおもちゃはレビューできない
	ErrReviewNotAllowed = errors.New("review not allowed")
	//409 同じおもちゃに2回目のレビュー
	ErrAlreadyReviewed = errors.New("already reviewed")
	//503 カタログAPIが使えない
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
