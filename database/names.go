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

package database

import (
	"errors"

	"github.com/blinklabs-io/beagle/database/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetName records or refreshes the reverse-lookup index entry for a
// node. The dotted path is derived from the parent's index entry, so
// entries must be written parent-first (the registry's parent
// authorization check already guarantees this ordering).
func (d *Database) SetName(
	nodeId []byte,
	parentId []byte,
	label string,
	owner []byte,
	expiresAt int64,
) error {
	name := label
	if parentName, err := d.NameById(parentId); err == nil && parentName != "" {
		name = label + "." + parentName
	}
	item := models.Name{
		NodeID:    nodeId,
		ParentID:  parentId,
		Name:      name,
		Label:     label,
		Owner:     owner,
		ExpiresAt: expiresAt,
	}
	result := d.metadata.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "node_id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"parent_id", "name", "label", "owner", "expires_at"},
		),
	}).Create(&item)
	return result.Error
}

// SetNameOwner updates the indexed owner for an existing entry. A
// missing entry is a no-op, since the index is best-effort.
func (d *Database) SetNameOwner(nodeId []byte, owner []byte) error {
	result := d.metadata.Model(&models.Name{}).
		Where("node_id = ?", nodeId).
		Update("owner", owner)
	return result.Error
}

// SetNameExpiration updates the indexed expiration for an existing
// entry
func (d *Database) SetNameExpiration(nodeId []byte, expiresAt int64) error {
	result := d.metadata.Model(&models.Name{}).
		Where("node_id = ?", nodeId).
		Update("expires_at", expiresAt)
	return result.Error
}

// NameById returns the dotted path indexed for a node id. The root
// and unknown nodes both return the empty string.
func (d *Database) NameById(nodeId []byte) (string, error) {
	var item models.Name
	result := d.metadata.
		Where("node_id = ?", nodeId).
		First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return item.Name, nil
}

// IdByName returns the indexed node id for a dotted path
func (d *Database) IdByName(name string) ([]byte, error) {
	var item models.Name
	result := d.metadata.
		Where("name = ?", name).
		First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, result.Error
	}
	return item.NodeID, nil
}

// NamesByOwner returns all indexed entries currently attributed to an
// owner
func (d *Database) NamesByOwner(owner []byte) ([]models.Name, error) {
	var items []models.Name
	result := d.metadata.
		Where("owner = ?", owner).
		Order("name").
		Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}
	return items, nil
}

// NamesExpiringBefore returns index entries whose lease ends before
// the given unix timestamp
func (d *Database) NamesExpiringBefore(unixTime int64) ([]models.Name, error) {
	var items []models.Name
	result := d.metadata.
		Where("expires_at < ?", unixTime).
		Order("expires_at").
		Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}
	return items, nil
}
