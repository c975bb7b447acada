package storefront

import (
	"errors"
	"testing"
)

func TestStorageImplementations(t *testing.T) {
	badgerStore, err := OpenBadgerStorage("")
	if err != nil {
		t.Fatalf("OpenBadgerStorage: %v", err)
	}
	t.Cleanup(func() { badgerStore.Close() })

	stores := map[string]Storage{
		"memory": NewMemoryStorage(),
		"badger": badgerStore,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get(missing) err = %v", err)
			}
			if err := store.Set("k", []byte("v1")); err != nil {
				t.Fatal(err)
			}
			if err := store.Set("k", []byte("v2")); err != nil {
				t.Fatal(err)
			}
			got, err := store.Get("k")
			if err != nil || string(got) != "v2" {
				t.Errorf("Get = %q, %v", got, err)
			}
			if err := store.Delete("k"); err != nil {
				t.Fatal(err)
			}
			if err := store.Delete("k"); err != nil {
				t.Errorf("second Delete: %v", err)
			}
			if _, err := store.Get("k"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get after Delete err = %v", err)
			}
		})
	}
}

func TestBadgerStoragePersists(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBadgerStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(keyToken, []byte("tok")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadgerStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	st, err := LoadState(reopened)
	if err != nil {
		t.Fatal(err)
	}
	if st.Token != "tok" {
		t.Errorf("token = %q after reopen", st.Token)
	}
}

func TestLoadStateRejectsCorruptEntries(t *testing.T) {
	store := NewMemoryStorage()
	_ = store.Set(keyCart, []byte("{not json"))
	if _, err := LoadState(store); err == nil {
		t.Error("corrupt cart accepted")
	}
}
