// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package signals re-raises SIGINT on behalf of callers that intercepted it
// (or observed the external procedure report "interrupted from keyboard")
// and need the host process's own signal handling to see it exactly once,
// after the intercepting call has unwound.
package signals

import (
	"os"

	"golang.org/x/sys/unix"
)

// RaiseInterrupt re-delivers SIGINT to the current process. Unlike
// signal.Notify-based approaches, this targets the process directly via
// unix.Kill so the signal is observed even by a handler installed after the
// adapter's check-sat call returns.
func RaiseInterrupt() {
	_ = unix.Kill(os.Getpid(), unix.SIGINT)
}
