// Copyright 2025 Blink Labs Software
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

package models

// MigrateModels is a list of GORM models to migrate on startup
var MigrateModels = []any{
	&Name{},
}

// Name is the reverse-lookup index entry mapping a node id back to
// its dotted path. It mirrors ledger state and is rebuilt from
// registration events, never consulted for authorization.
type Name struct {
	ID        uint   `gorm:"primarykey"`
	NodeID    []byte `gorm:"uniqueIndex"`
	ParentID  []byte `gorm:"index"`
	Name      string `gorm:"index"`
	Label     string
	Owner     []byte `gorm:"index"`
	ExpiresAt int64  `gorm:"index"`
}

func (Name) TableName() string {
	return "name"
}
