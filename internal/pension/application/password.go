package application

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHasher 单次运行内缓存同一明文的哈希，bcrypt 本身已加盐
type passwordHasher struct {
	cost  int
	cache map[string]string
}

func newPasswordHasher(cost int) *passwordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &passwordHasher{cost: cost, cache: make(map[string]string)}
}

func (h *passwordHasher) Hash(plain string) (string, error) {
	if hash, ok := h.cache[plain]; ok {
		return hash, nil
	}
	raw, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	h.cache[plain] = string(raw)
	return string(raw), nil
}
