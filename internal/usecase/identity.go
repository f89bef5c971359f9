package usecase

import "context"

// ログイン中のユーザー
type Identity struct {
	Email string
}

// 現在のユーザーを返す約束（未ログインなら ok=false）
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (Identity, bool)
}

type identityCtxKey struct{}

// middleware.AuthJWT がリクエストのcontextに入れる
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	if !ok || id.Email == "" {
		return Identity{}, false
	}
	return id, true
}

// contextからIdentityを取り出す標準実装
type ContextIdentityProvider struct{}

func (ContextIdentityProvider) CurrentIdentity(ctx context.Context) (Identity, bool) {
	return IdentityFromContext(ctx)
}
