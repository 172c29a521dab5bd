package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxIdentity ctxKey = iota
	ctxToken
)

// WithIdentity attaches the verified identity and the raw bearer token to ctx.
// The token is kept so downstream calls can act on the caller's behalf.
func WithIdentity(ctx context.Context, id Identity, token string) context.Context {
	ctx = context.WithValue(ctx, ctxIdentity, id)
	ctx = context.WithValue(ctx, ctxToken, token)
	return ctx
}

func IdentityFrom(ctx context.Context) (Identity, error) {
	if id, ok := ctx.Value(ctxIdentity).(Identity); ok && id.ID != 0 {
		return id, nil
	}
	return Identity{}, errors.New("identity not in context")
}

func SubjectID(ctx context.Context) (int64, error) {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return 0, err
	}
	return id.ID, nil
}

func Token(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxToken).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("token not in context")
}
