// Package swapgen implements SwapGenerator (spec §4.4): a stream of
// requestedSwaps random SwapDescriptors drawn uniformly over the edge ids
// [0, edgesInGraph), each with a uniformly random direction bit.
//
// It is the randomized driver that feeds both emes (apply the swaps to an
// existing graph) and cmrewire (repeatedly regenerate swap batches until a
// configuration-model bootstrap becomes simple). Grounded on
// original_source/include/SwapGenerator.h, with the random source
// following the *rand.Rand-via-functional-option convention used by
// katalvlaran-lvlath's builder package instead of stxxl::random_number64.
package swapgen
