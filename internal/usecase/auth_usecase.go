package usecase

import (
	"context"
	"sync"
	"time"

	"toyshop/internal/domain/model"
	repo "toyshop/internal/repository"

	"go.uber.org/zap"
)

const UsersKey = "users"

// パスワード最低文字数
const minPasswordLen = 8

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(email string, now time.Time) (token string, expiresAt time.Time, err error)
}

type UserDTO struct {
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	Surname          string   `json:"surname"`
	Phone            string   `json:"phone,omitempty"`
	Address          string   `json:"address,omitempty"`
	FavoriteToyTypes []string `json:"favoriteToyTypes,omitempty"`
}

type AccessTokenDTO struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthOutput struct {
	User  UserDTO        `json:"user"`
	Token AccessTokenDTO `json:"token"`
}

type SignupInput struct {
	Email            string
	Password         string
	Name             string
	Surname          string
	Phone            string
	Address          string
	FavoriteToyTypes []string
}

// 変更したい項目だけnil以外
type UpdateProfileInput struct {
	Email            *string
	Name             *string
	Surname          *string
	Phone            *string
	Address          *string
	FavoriteToyTypes []string
}

// AuthUsecase は会員の登録・ログイン・プロフィール変更。
// 会員一覧はKVの "users" に丸ごと保存する。
type AuthUsecase struct {
	mu       sync.Mutex
	kv       repo.KVStore
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
	log      *zap.Logger

	users []model.User
}

// DI
func NewAuthUsecase(
	ctx context.Context,
	kv repo.KVStore,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
	logger *zap.Logger,
) (*AuthUsecase, error) {
	users, err := loadJSON[model.User](ctx, kv, UsersKey, logger)
	if err != nil {
		return nil, err
	}
	return &AuthUsecase{
		kv:       kv,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
		log:      logger,
		users:    users,
	}, nil
}

// 会員登録してそのままログイン状態にする
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (AuthOutput, error) {
	if !isValidEmailFormat(in.Email) {
		return AuthOutput{}, ErrInvalidEmailFormat
	}
	if len(in.Password) < minPasswordLen {
		return AuthOutput{}, ErrPasswordTooShort
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthOutput{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	email := normalizeEmail(in.Email)
	if u.indexLocked(email) >= 0 {
		return AuthOutput{}, ErrEmailAlreadyExists
	}

	now := u.clock.Now()
	user := model.User{
		Email:            email,
		Name:             in.Name,
		Surname:          in.Surname,
		Phone:            in.Phone,
		Address:          in.Address,
		FavoriteToyTypes: in.FavoriteToyTypes,
		PasswordHash:     hashed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	next := make([]model.User, len(u.users), len(u.users)+1)
	copy(next, u.users)
	next = append(next, user)
	if err := saveJSON(ctx, u.kv, kvDoc{key: UsersKey, value: next}); err != nil {
		return AuthOutput{}, err
	}
	u.users = next

	u.log.Info("user signed up", zap.String("email", email))
	return u.issueLocked(user)
}

// メール＋パスワードでログイン
func (u *AuthUsecase) Login(_ context.Context, email, password string) (AuthOutput, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(normalizeEmail(email))
	if i < 0 {
		return AuthOutput{}, ErrInvalidCredentials
	}
	user := u.users[i]
	if !u.verifier.Verify(password, user.PasswordHash) {
		return AuthOutput{}, ErrInvalidCredentials
	}
	return u.issueLocked(user)
}

// emailで会員を探す
func (u *AuthUsecase) FindByEmail(email string) (model.User, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(normalizeEmail(email))
	if i < 0 {
		return model.User{}, false
	}
	return u.users[i], true
}

// ログイン中ユーザーのプロフィール
func (u *AuthUsecase) Profile(ctx context.Context) (UserDTO, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return UserDTO{}, ErrUnauthorized
	}
	user, ok := u.FindByEmail(id.Email)
	if !ok {
		return UserDTO{}, ErrUnauthorized
	}
	return toUserDTO(user), nil
}

// プロフィール更新。emailを変えたときはトークンも新しいemailで発行し直す。
func (u *AuthUsecase) UpdateProfile(ctx context.Context, in UpdateProfileInput) (AuthOutput, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return AuthOutput{}, ErrUnauthorized
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(normalizeEmail(id.Email))
	if i < 0 {
		return AuthOutput{}, ErrUnauthorized
	}
	updated := u.users[i]

	if in.Email != nil {
		if !isValidEmailFormat(*in.Email) {
			return AuthOutput{}, ErrInvalidEmailFormat
		}
		nextEmail := normalizeEmail(*in.Email)
		//他のアカウントとの衝突チェック
		if nextEmail != updated.Email && u.indexLocked(nextEmail) >= 0 {
			return AuthOutput{}, ErrEmailAlreadyExists
		}
		updated.Email = nextEmail
	}
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Surname != nil {
		updated.Surname = *in.Surname
	}
	if in.Phone != nil {
		updated.Phone = *in.Phone
	}
	if in.Address != nil {
		updated.Address = *in.Address
	}
	if in.FavoriteToyTypes != nil {
		updated.FavoriteToyTypes = in.FavoriteToyTypes
	}
	updated.UpdatedAt = u.clock.Now()

	if err := u.replaceLocked(ctx, i, updated); err != nil {
		return AuthOutput{}, err
	}
	return u.issueLocked(updated)
}

// パスワード変更（現在のパスワード必須）
func (u *AuthUsecase) ChangePassword(ctx context.Context, current, next string) error {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	if len(next) < minPasswordLen {
		return ErrPasswordTooShort
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(normalizeEmail(id.Email))
	if i < 0 {
		return ErrUnauthorized
	}
	user := u.users[i]
	if !u.verifier.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashed, err := u.hasher.Hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.UpdatedAt = u.clock.Now()
	return u.replaceLocked(ctx, i, user)
}

func (u *AuthUsecase) indexLocked(normalized string) int {
	for i, usr := range u.users {
		if normalizeEmail(usr.Email) == normalized {
			return i
		}
	}
	return -1
}

func (u *AuthUsecase) replaceLocked(ctx context.Context, i int, user model.User) error {
	next := make([]model.User, len(u.users))
	copy(next, u.users)
	next[i] = user
	if err := saveJSON(ctx, u.kv, kvDoc{key: UsersKey, value: next}); err != nil {
		return err
	}
	u.users = next
	return nil
}

func (u *AuthUsecase) issueLocked(user model.User) (AuthOutput, error) {
	token, exp, err := u.issuer.Issue(user.Email, u.clock.Now())
	if err != nil {
		return AuthOutput{}, err
	}
	return AuthOutput{
		User:  toUserDTO(user),
		Token: AccessTokenDTO{AccessToken: token, ExpiresAt: exp},
	}, nil
}

func toUserDTO(u model.User) UserDTO {
	return UserDTO{
		Email:            u.Email,
		Name:             u.Name,
		Surname:          u.Surname,
		Phone:            u.Phone,
		Address:          u.Address,
		FavoriteToyTypes: u.FavoriteToyTypes,
	}
}
