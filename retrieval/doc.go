// Copyright 2025 Handoff Labs
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


// Package retrieval ranks stored document chunks against a query.
//
// The Retriever type implements a multi-stage retrieval algorithm:
//   - Query classification adapts breadth and context assembly to the
//     apparent intent (summary, detail or default)
//   - Vector similarity search over deterministic feature vectors
//   - A keyword fallback scan that compensates for the feature vectors'
//     weak discrimination of proper names
//
// Results from both strategies are merged by a fixed policy, truncated to a
// per-intent context budget, and returned with source attribution and a
// confidence estimate for the generation step to consume.
package retrieval
