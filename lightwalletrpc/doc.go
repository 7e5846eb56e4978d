// Package lightwalletrpc is the typed RPC façade onto the remote
// light-wallet daemon: get_lightd_info, get_latest_block,
// get_subtree_roots, get_block_range (stream), get_taddress_txids
// (stream), get_transaction, and get_mempool_stream.
//
// The daemon's .proto schema is an external collaborator: this module
// does not own it and does not run protoc. The walletrpc subpackage
// hand-authors the client-side shapes a protoc-gen-go-grpc build against
// that schema would produce, so the rest of this module can depend on a
// typed client without a build-time codegen step.
package lightwalletrpc
