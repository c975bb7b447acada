package connect

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joshua-takyi/travelease/internal/config"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want []string
	}{
		{
			name: "mysql parses times in UTC",
			cfg:  config.Config{DBDriver: "mysql", DBHost: "db", DBUser: "root", DBPassword: "pw", DBName: "travelease"},
			want: []string{"root:pw@tcp(db:3306)/travelease", "parseTime=true"},
		},
		{
			name: "postgres",
			cfg:  config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "6543", DBUser: "u", DBPassword: "p", DBName: "n"},
			want: []string{"host=db", "port=6543", "dbname=n", "sslmode=disable"},
		},
		{
			name: "sqlite enables foreign keys",
			cfg:  config.Config{DBDriver: "sqlite", DBName: "local"},
			want: []string{"file:local.db?", "foreign_keys%281%29"},
		},
		{
			name: "explicit dsn wins",
			cfg:  config.Config{DBDriver: "mysql", DBDSN: "custom"},
			want: []string{"custom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(&tt.cfg)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("DSN() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestMySQLDSNOptions(t *testing.T) {
	dsn := DSN(&config.Config{DBDriver: "mysql", DBHost: "db", DBUser: "root", DBPassword: "pw", DBName: "travelease"})
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if !mc.ParseTime || mc.Loc != time.UTC {
		t.Errorf("ParseTime = %v, Loc = %v", mc.ParseTime, mc.Loc)
	}
	// Repeating an identical UPDATE must still report the matched row.
	if !mc.ClientFoundRows {
		t.Error("clientFoundRows not set")
	}
	if mc.Addr != "db:3306" || mc.DBName != "travelease" {
		t.Errorf("Addr = %q, DBName = %q", mc.Addr, mc.DBName)
	}
}

func TestOpenDatabaseSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBName:         filepath.Join(t.TempDir(), "open"),
		DBMaxOpenConns: 2,
	}
	db, err := OpenDatabase(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	defer db.Close()

	if got := db.Rebind("SELECT ?"); got != "SELECT ?" {
		t.Errorf("Rebind changed sqlite placeholders: %q", got)
	}
	var one int
	if err := db.Get(&one, "SELECT 1"); err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}
