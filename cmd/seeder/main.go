// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Seeds a demo voter registration extract for local development.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/sources/voterfile"
)

var voters = []core.RawMatch{
	{SourceKey: "CA-1001", FirstName: "John", MiddleName: "A", LastName: "Smith", BirthYear: 1983, Street: "12 Elm St", City: "Los Angeles", State: "CA", ZipCode: "90001", Phone: "2135550188"},
	{SourceKey: "CA-1002", FirstName: "Jon", LastName: "Smith", BirthYear: 1984, Street: "88 Oak Ave", City: "Los Angeles", State: "CA", ZipCode: "90014"},
	{SourceKey: "CA-1003", FirstName: "Jane", LastName: "Smith", BirthYear: 1990, City: "San Diego", State: "CA", ZipCode: "92101"},
	{SourceKey: "CA-1004", FirstName: "Maria", LastName: "Garcia", BirthYear: 1972, Street: "5 Palm Ct", City: "Fresno", State: "CA", ZipCode: "93701", Phone: "5595550117"},
	{SourceKey: "CA-1005", FirstName: "Kenji", LastName: "Nakamura", BirthYear: 1975, City: "Los Angeles", State: "CA", ZipCode: "90012"},
	{SourceKey: "CA-1006", FirstName: "Robert", MiddleName: "T", LastName: "Johnson", BirthYear: 1961, Street: "301 Hill Rd", City: "Sacramento", State: "CA", ZipCode: "95814"},
	{SourceKey: "CA-1007", FirstName: "Rupert", LastName: "Johnson", BirthYear: 1961, City: "Sacramento", State: "CA", ZipCode: "95816"},
	{SourceKey: "CA-1008", FirstName: "Aisha", LastName: "Okafor", BirthYear: 1988, Street: "77 Bay View Dr", City: "Oakland", State: "CA", ZipCode: "94607"},
	{SourceKey: "CA-1009", FirstName: "Wei", LastName: "Chen", BirthYear: 1979, City: "San Francisco", State: "CA", ZipCode: "94110", Phone: "4155550149"},
	{SourceKey: "CA-1010", FirstName: "Elena", MiddleName: "R", LastName: "Petrov", BirthYear: 1969, Street: "9 Cedar Ln", City: "San Jose", State: "CA", ZipCode: "95112"},
}

func main() {
	dbPath := flag.String("db", "voters.db", "Path to the voter file SQLite database")
	flag.Parse()

	if err := run(*dbPath); err != nil {
		slog.Error("seeding failed", "err", err)
		os.Exit(1)
	}
}

func run(dbPath string) error {
	db, err := sql.Open("sqlite", "file:"+dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()

	if err := voterfile.InitSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, voter := range voters {
		if err := voterfile.InsertVoter(db, voter); err != nil {
			return fmt.Errorf("insert voter %s: %w", voter.SourceKey, err)
		}
	}

	slog.Info("seeded voter file", "db", dbPath, "voters", len(voters))
	return nil
}
