package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost стоимость bcrypt по умолчанию (~250ms на обычном железе)
const DefaultPasswordCost = 12

// Hasher хеширует и проверяет пароли через bcrypt
type Hasher struct {
	cost int
}

// NewHasher создает Hasher с заданной стоимостью bcrypt.
// Стоимость вне диапазона [bcrypt.MinCost, bcrypt.MaxCost] заменяется на DefaultPasswordCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the bcrypt cost factor used for new hashes.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash возвращает bcrypt хеш пароля. Соль генерируется для каждого вызова.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify проверяет пароль против сохраненного хеша.
// Для несовпадения и для поврежденного хеша возвращает false, а не ошибку.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

