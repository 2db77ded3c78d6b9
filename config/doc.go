// SPDX-License-Identifier: EPL-2.0

// Package config loads audtrans settings from defaults, an optional YAML file
// and AUDTRANS_* environment variables.
package config
