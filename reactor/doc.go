// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides readiness polling for the descriptors behind
// stream drivers: epoll on Linux, ErrNotSupported elsewhere.
package reactor
