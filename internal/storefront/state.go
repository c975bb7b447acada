package storefront

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joshua-takyi/travelease/internal/models"
)

const (
	keyToken = "token"
	keyUser  = "user"
	keyCart  = "cart"
)

// State is what survives between storefront runs.
type State struct {
	User  *models.User
	Token string
	Cart  Cart
}

func (s State) LoggedIn() bool {
	return s.Token != "" && s.User != nil
}

// LoadState reads the state from storage. Missing keys are left zero.
func LoadState(store Storage) (State, error) {
	var st State

	token, err := store.Get(keyToken)
	switch {
	case err == nil:
		st.Token = string(token)
	case !errors.Is(err, ErrKeyNotFound):
		return State{}, err
	}

	if err := loadJSON(store, keyUser, &st.User); err != nil {
		return State{}, err
	}
	if err := loadJSON(store, keyCart, &st.Cart); err != nil {
		return State{}, err
	}
	return st, nil
}

func loadJSON(store Storage, key string, dst interface{}) error {
	raw, err := store.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("corrupt %s entry: %w", key, err)
	}
	return nil
}

func saveJSON(store Storage, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(key, raw)
}
