// SPDX-License-Identifier: EPL-2.0

// Package cli implements the audtrans command tree.
package cli
