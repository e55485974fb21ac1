// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// configuration file handling
//
// Configuration files are Lua scripts returning a single table; the
// table is mapped onto a Go structure using the "gluamapper" struct
// tags. Relative paths in the file are resolved against the
// data_directory entry, which itself defaults to the directory
// holding the configuration file.
package configuration
