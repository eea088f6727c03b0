/*
Copyright 2025 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package node

import (
	"context"
	"time"

	"github.com/alexandremahdhaoui/testenv-vm/pkg/screen"
)

// Console operations delegate to the injected screen.Automator. Every
// operation fails with ErrNoScreen when none was configured.

// SetScreen replaces the screen automator after construction.
func (c *Controller) SetScreen(automator screen.Automator) {
	c.automator = automator
}

func (c *Controller) Click(ctx context.Context, pattern string) error {
	if c.automator == nil {
		return ErrNoScreen
	}

	return c.automator.Click(ctx, pattern)
}

func (c *Controller) DoubleClick(ctx context.Context, pattern string) error {
	if c.automator == nil {
		return ErrNoScreen
	}

	return c.automator.DoubleClick(ctx, pattern)
}

func (c *Controller) Type(ctx context.Context, text string) error {
	if c.automator == nil {
		return ErrNoScreen
	}

	return c.automator.Type(ctx, text)
}

func (c *Controller) WaitFor(
	ctx context.Context,
	pattern string,
	timeout time.Duration,
) error {
	if c.automator == nil {
		return ErrNoScreen
	}

	return c.automator.WaitFor(ctx, pattern, timeout)
}

func (c *Controller) Exists(ctx context.Context, pattern string) (bool, error) {
	if c.automator == nil {
		return false, ErrNoScreen
	}

	return c.automator.Exists(ctx, pattern)
}
