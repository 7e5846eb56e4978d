package walletrpc

// The methods below satisfy the legacy github.com/golang/protobuf Message
// interface (Reset/String/ProtoMessage) so these hand-authored stand-ins
// can flow through grpc.ClientConn.Invoke/NewStream the same way real
// protoc-gen-go output would. The daemon's actual .proto lives outside
// this module's scope; see lightwalletrpc/doc.go.

func (m *ChainSpec) Reset()         { *m = ChainSpec{} }
func (m *ChainSpec) String() string { return "ChainSpec{}" }
func (*ChainSpec) ProtoMessage()    {}

func (m *Empty) Reset()         { *m = Empty{} }
func (m *Empty) String() string { return "Empty{}" }
func (*Empty) ProtoMessage()    {}

func (m *BlockID) Reset()         { *m = BlockID{} }
func (m *BlockID) String() string { return "BlockID{}" }
func (*BlockID) ProtoMessage()    {}

func (m *BlockRange) Reset()         { *m = BlockRange{} }
func (m *BlockRange) String() string { return "BlockRange{}" }
func (*BlockRange) ProtoMessage()    {}

func (m *LightdInfo) Reset()         { *m = LightdInfo{} }
func (m *LightdInfo) String() string { return "LightdInfo{}" }
func (*LightdInfo) ProtoMessage()    {}

func (m *CompactBlock) Reset()         { *m = CompactBlock{} }
func (m *CompactBlock) String() string { return "CompactBlock{}" }
func (*CompactBlock) ProtoMessage()    {}

func (m *TransparentAddressBlockFilter) Reset()         { *m = TransparentAddressBlockFilter{} }
func (m *TransparentAddressBlockFilter) String() string { return "TransparentAddressBlockFilter{}" }
func (*TransparentAddressBlockFilter) ProtoMessage()    {}

func (m *RawTransaction) Reset()         { *m = RawTransaction{} }
func (m *RawTransaction) String() string { return "RawTransaction{}" }
func (*RawTransaction) ProtoMessage()    {}

func (m *TxFilter) Reset()         { *m = TxFilter{} }
func (m *TxFilter) String() string { return "TxFilter{}" }
func (*TxFilter) ProtoMessage()    {}

func (m *GetSubtreeRootsArg) Reset()         { *m = GetSubtreeRootsArg{} }
func (m *GetSubtreeRootsArg) String() string { return "GetSubtreeRootsArg{}" }
func (*GetSubtreeRootsArg) ProtoMessage()    {}

func (m *SubtreeRoot) Reset()         { *m = SubtreeRoot{} }
func (m *SubtreeRoot) String() string { return "SubtreeRoot{}" }
func (*SubtreeRoot) ProtoMessage()    {}
