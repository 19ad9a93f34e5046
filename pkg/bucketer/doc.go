// Package bucketer deterministically assigns users to variations by hashing.
//
// The bucketer is a pure function of its inputs: the bucketing key (user id
// or the dedicated bucketing-id attribute), the rule's id and the rule's
// ordered traffic allocation. Identical inputs always produce the identical
// assignment, across processes and across SDK implementations, because the
// hash is MurmurHash3 (x86, 32-bit) with a fixed seed over the concatenated
// bucketing key and rule id.
//
// The 32-bit hash space is scaled down to 10,000 buckets and the ordered
// traffic allocation is walked front to back; the first range whose end
// exceeds the bucket value claims the user. A range with an empty entity id,
// or a bucket value past the last range, leaves the user unassigned; that is
// how partial traffic rollouts hold users out.
//
//	b := bucketer.New()
//	variation, ok := b.Bucket("user-42", experiment, "user-42")
//
// A Bucketer is stateless and safe for concurrent use.
package bucketer
