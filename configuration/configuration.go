// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/arnaudgouriou/pantheon/storage"
)

// basic defaults (directories and files are relative to the "data_directory" from the configuration file)
const (
	defaultDatabaseDirectory = "data"
	defaultDatabaseLabel     = "pantheon"

	defaultLogDirectory = "log"
	defaultLogFile      = "pantheon.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// DatabaseType - engine settings from the configuration file
type DatabaseType struct {
	Directory          string `gluamapper:"directory" json:"directory"`
	Label              string `gluamapper:"label" json:"label"`
	MaxOpenFiles       int    `gluamapper:"max_open_files" json:"max_open_files"`
	BlockCacheCapacity int    `gluamapper:"block_cache_capacity" json:"block_cache_capacity"`
	BlockSize          int    `gluamapper:"block_size" json:"block_size"`
	WriteBuffer        int    `gluamapper:"write_buffer" json:"write_buffer"`
}

// SegmentType - one declared segment
//
// the identifier is stored as the UTF-8 bytes of the configured string
type SegmentType struct {
	Name       string `gluamapper:"name" json:"name"`
	Identifier string `gluamapper:"identifier" json:"identifier"`
}

// Configuration - the full configuration file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Segments      []SegmentType        `gluamapper:"segments" json:"segments"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - read, decode and normalise a configuration file
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if err != nil {
		return nil, err
	}

	// default data directory is the one holding the configuration file
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory: dataDirectory,
		Database: DatabaseType{
			Directory: defaultDatabaseDirectory,
			Label:     defaultDatabaseLabel,
		},
		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// resolve file paths relative to the data directory
	options.DataDirectory = ensureAbsolute(dataDirectory, options.DataDirectory)
	options.Database.Directory = ensureAbsolute(options.DataDirectory, options.Database.Directory)
	options.Logging.Directory = ensureAbsolute(options.DataDirectory, options.Logging.Directory)

	return options, nil
}

// StoreOptions - storage engine options derived from the file
func (c *Configuration) StoreOptions(readOnly bool) storage.Options {
	return storage.Options{
		DatabaseDirectory:  c.Database.Directory,
		Label:              c.Database.Label,
		MaxOpenFiles:       c.Database.MaxOpenFiles,
		BlockCacheCapacity: c.Database.BlockCacheCapacity,
		BlockSize:          c.Database.BlockSize,
		WriteBuffer:        c.Database.WriteBuffer,
		ReadOnly:           readOnly,
	}
}

// StoreSegments - the declared segment catalog
func (c *Configuration) StoreSegments() []storage.Segment {
	segments := make([]storage.Segment, 0, len(c.Segments))
	for _, segment := range c.Segments {
		segments = append(segments, storage.Segment{
			Name:       segment.Name,
			Identifier: []byte(segment.Identifier),
		})
	}
	return segments
}

// turn a relative path into an absolute one anchored at a directory
func ensureAbsolute(directory string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(directory, path))
}
