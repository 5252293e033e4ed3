//go:build integration

package sqlexec_test

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/database"
	"jobdash/cli/internal/sqlexec"
)

const postgresPort = "5432/tcp"

const seedSQL = `
CREATE TABLE Companies (
	company_id   SERIAL PRIMARY KEY,
	company_name TEXT NOT NULL
);
CREATE TABLE Job_Postings (
	job_id       SERIAL PRIMARY KEY,
	job_title    TEXT NOT NULL,
	salary_range TEXT NOT NULL,
	company_id   INTEGER REFERENCES Companies (company_id)
);
CREATE TABLE Skills (
	skill_id   SERIAL PRIMARY KEY,
	skill_name TEXT NOT NULL
);
CREATE TABLE Job_Skills (
	job_id   INTEGER REFERENCES Job_Postings (job_id),
	skill_id INTEGER REFERENCES Skills (skill_id)
);
INSERT INTO Companies (company_name) VALUES ('Acme'), ('Globex');
INSERT INTO Job_Postings (job_title, salary_range, company_id) VALUES
	('Data Analyst', '$150K', 1),
	('Support Engineer', '$90K', 2),
	('Staff Engineer', '$200K', 1);
INSERT INTO Skills (skill_name) VALUES ('SQL'), ('Go'), ('Python');
INSERT INTO Job_Skills (job_id, skill_id) VALUES (1, 1), (1, 3), (2, 1), (3, 1), (3, 2);
`

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// startPostgres runs postgres:16-alpine with the job market schema and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     "analyst",
			"POSTGRES_PASSWORD": "s3cret",
			"POSTGRES_DB":       "job_market_db",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	connString := fmt.Sprintf("postgres://analyst:s3cret@%s:%s/job_market_db?sslmode=disable", host, port.Port())

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("connect for seeding: %v", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, seedSQL); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return connString
}

func TestIntegration_Executor(t *testing.T) {
	connString := startPostgres(t)
	ctx := context.Background()

	db := database.NewManager(connString, database.WithDialer(database.PgxDialer(10*time.Second)))
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	runner := sqlexec.New(db)

	t.Run("single column select", func(t *testing.T) {
		out := runner.Run(ctx, "SELECT job_title FROM Job_Postings LIMIT 1", sqlexec.SourceUser)
		success, ok := out.(sqlexec.Success)
		if !ok {
			t.Fatalf("outcome = %#v, want Success", out)
		}
		if len(success.Result.Columns) != 1 || success.Result.Columns[0] != "job_title" {
			t.Errorf("columns = %v, want [job_title]", success.Result.Columns)
		}
		if success.Result.RowCount() != 1 {
			t.Errorf("rows = %d, want 1", success.Result.RowCount())
		}
	})

	t.Run("missing relation", func(t *testing.T) {
		out := runner.Run(ctx, "SELECT * FROM Nonexistent_Table", sqlexec.SourceUser)
		failure, ok := out.(sqlexec.Failure)
		if !ok {
			t.Fatalf("outcome = %#v, want Failure", out)
		}
		if !strings.Contains(failure.Message(), "nonexistent_table") {
			t.Errorf("message = %q, want it to name the relation", failure.Message())
		}
	})

	t.Run("top paying jobs ordered by salary", func(t *testing.T) {
		entry, err := catalog.Default().Lookup("Top 5 Highest Paying Jobs")
		if err != nil {
			t.Fatal(err)
		}
		out := runner.Run(ctx, entry.SQL, sqlexec.SourceCatalog)
		success, ok := out.(sqlexec.Success)
		if !ok {
			t.Fatalf("outcome = %#v, want Success", out)
		}
		var got []string
		for i := range success.Result.Rows {
			got = append(got, success.Result.Cell(i, 1))
		}
		if strings.Join(got, ",") != "$200K,$150K,$90K" {
			t.Errorf("salary order = %v, want [$200K $150K $90K]", got)
		}
	})

	t.Run("catalog runs are idempotent", func(t *testing.T) {
		for _, entry := range catalog.Default().Entries() {
			first, ok1 := runner.Run(ctx, entry.SQL, sqlexec.SourceCatalog).(sqlexec.Success)
			second, ok2 := runner.Run(ctx, entry.SQL, sqlexec.SourceCatalog).(sqlexec.Success)
			if !ok1 || !ok2 {
				t.Fatalf("%s did not succeed", entry.ID)
			}
			if fmt.Sprint(first.Result.Strings()) != fmt.Sprint(second.Result.Strings()) {
				t.Errorf("%s: results differ between runs", entry.ID)
			}
		}
	})

	t.Run("describe table", func(t *testing.T) {
		out := runner.DescribeTable(ctx, "Job_Postings")
		success, ok := out.(sqlexec.Success)
		if !ok {
			t.Fatalf("outcome = %#v, want Success", out)
		}
		if success.Result.RowCount() != 4 || success.Result.Cell(0, 0) != "job_id" {
			t.Errorf("columns = %v", success.Result.Strings())
		}
	})

	t.Run("reconnects after the session is killed", func(t *testing.T) {
		pidOut, ok := runner.Run(ctx, "SELECT pg_backend_pid()", sqlexec.SourceCatalog).(sqlexec.Success)
		if !ok {
			t.Fatal("could not read backend pid")
		}
		before := db.Stats()

		admin, err := pgx.Connect(ctx, connString)
		if err != nil {
			t.Fatalf("admin connect: %v", err)
		}
		defer admin.Close(ctx)
		if _, err := admin.Exec(ctx, "SELECT pg_terminate_backend($1)", pidOut.Result.Rows[0][0]); err != nil {
			t.Fatalf("terminate backend: %v", err)
		}
		time.Sleep(200 * time.Millisecond)

		out := runner.Run(ctx, "SELECT 1", sqlexec.SourceUser)
		if _, ok := out.(sqlexec.Success); !ok {
			t.Fatalf("outcome = %#v, want Success after reconnect", out)
		}
		if got := db.Stats().Replaced - before.Replaced; got != 1 {
			t.Errorf("sessions replaced = %d, want 1", got)
		}
	})
}
