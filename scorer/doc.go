// SPDX-License-Identifier: MIT

// Package scorer provides model.Scorer implementations: Client posts
// batches to a model served over HTTP as JSON, Pooled caps concurrent calls
// with a weighted semaphore, and Constant returns a fixed logits row for
// dry runs.
package scorer
