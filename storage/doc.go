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


// Package storage defines the persistence interfaces for candidates and
// search jobs, plus the value codec shared by backend implementations.
//
// Candidates are the durable output of a search: every new search for a
// juror atomically replaces that juror's candidate set, while review
// decisions mutate single candidates in place. Search jobs are an
// append-only audit history and are never deleted.
//
// The storage/badger subpackage provides the BadgerDB implementation.
package storage
