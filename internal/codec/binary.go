package codec

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/example/wfviz/internal/domain"
)

// Field numbers, see snapshot.proto.
const (
	snapshotVersion protowire.Number = 1
	snapshotRoot    protowire.Number = 2

	nodeID         protowire.Number = 1
	nodeKind       protowire.Number = 2
	nodeName       protowire.Number = 3
	nodeStatus     protowire.Number = 4
	nodePath       protowire.Number = 5
	nodeCreatedAt  protowire.Number = 6
	nodeModifiedAt protowire.Number = 7
	nodeScheduler  protowire.Number = 8
	nodeChildren   protowire.Number = 9
	nodeParallel   protowire.Number = 10

	schedKind      protowire.Number = 1
	schedPartition protowire.Number = 2
	schedNodes     protowire.Number = 3
	schedProcs     protowire.Number = 4
	schedRequested protowire.Number = 5
	schedConsumed  protowire.Number = 6
	schedRemaining protowire.Number = 7
)

type binaryCodec struct{}

func (binaryCodec) Name() string { return "binary" }

func (binaryCodec) Marshal(root *domain.Node) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", domain.ErrInvalidArgument)
	}
	body, err := appendNode(nil, root)
	if err != nil {
		return nil, err
	}

	var b []byte
	b = protowire.AppendTag(b, snapshotVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, snapshotRoot, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	return b, nil
}

func (binaryCodec) Unmarshal(data []byte) (*domain.Node, error) {
	var (
		version uint64
		root    *domain.Node
	)
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == snapshotVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			version = v
			return n, nil
		case num == snapshotRoot && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			node, err := decodeNode(v)
			if err != nil {
				return 0, err
			}
			root = node
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode binary snapshot: %w", err)
	}
	if err := checkVersion(version); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("decode binary snapshot: %w: missing root", domain.ErrInvalidArgument)
	}
	return root, nil
}

func appendNode(b []byte, n *domain.Node) ([]byte, error) {
	b = protowire.AppendTag(b, nodeID, protowire.BytesType)
	b = protowire.AppendBytes(b, n.ID[:])
	b = protowire.AppendTag(b, nodeKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(n.Kind))
	b = protowire.AppendTag(b, nodeName, protowire.BytesType)
	b = protowire.AppendString(b, n.Name)
	b = protowire.AppendTag(b, nodeStatus, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(n.Status))
	b = protowire.AppendTag(b, nodePath, protowire.BytesType)
	b = protowire.AppendString(b, n.Path)

	var err error
	if b, err = appendMessage(b, nodeCreatedAt, timestamppb.New(n.CreatedAt)); err != nil {
		return nil, err
	}
	if b, err = appendMessage(b, nodeModifiedAt, timestamppb.New(n.ModifiedAt)); err != nil {
		return nil, err
	}

	if n.Scheduler != nil {
		sb, err := appendScheduler(nil, n.Scheduler)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, nodeScheduler, protowire.BytesType)
		b = protowire.AppendBytes(b, sb)
	}

	for _, child := range n.Children {
		cb, err := appendNode(nil, child)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, nodeChildren, protowire.BytesType)
		b = protowire.AppendBytes(b, cb)
	}

	if n.Parallel {
		b = protowire.AppendTag(b, nodeParallel, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b, nil
}

func appendScheduler(b []byte, r *domain.SchedulerRequest) ([]byte, error) {
	b = protowire.AppendTag(b, schedKind, protowire.BytesType)
	b = protowire.AppendString(b, r.Kind)
	b = protowire.AppendTag(b, schedPartition, protowire.BytesType)
	b = protowire.AppendString(b, r.Partition)
	b = protowire.AppendTag(b, schedNodes, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(r.NodeCount)))
	b = protowire.AppendTag(b, schedProcs, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(r.ProcsPerNode)))

	var err error
	if b, err = appendMessage(b, schedRequested, durationpb.New(r.WallclockRequested)); err != nil {
		return nil, err
	}
	if r.WallclockConsumed != nil {
		if b, err = appendMessage(b, schedConsumed, durationpb.New(*r.WallclockConsumed)); err != nil {
			return nil, err
		}
	}
	if r.WallclockRemaining != nil {
		if b, err = appendMessage(b, schedRemaining, durationpb.New(*r.WallclockRemaining)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func appendMessage(b []byte, num protowire.Number, m proto.Message) ([]byte, error) {
	mb, err := proto.Marshal(m)
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, mb), nil
}

func decodeNode(data []byte) (*domain.Node, error) {
	n := &domain.Node{}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ == protowire.VarintType {
			v, size := protowire.ConsumeVarint(b)
			switch num {
			case nodeKind:
				n.Kind = domain.NodeKind(v)
			case nodeStatus:
				n.Status = domain.Status(v)
			case nodeParallel:
				n.Parallel = protowire.DecodeBool(v)
			}
			return size, nil
		}
		if typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}

		v, size := protowire.ConsumeBytes(b)
		if size < 0 {
			return size, nil
		}
		switch num {
		case nodeID:
			u, err := uuid.FromBytes(v)
			if err != nil {
				return 0, err
			}
			n.ID = u
		case nodeName:
			n.Name = string(v)
		case nodePath:
			n.Path = string(v)
		case nodeCreatedAt:
			t, err := decodeTime(v)
			if err != nil {
				return 0, err
			}
			n.CreatedAt = t
		case nodeModifiedAt:
			t, err := decodeTime(v)
			if err != nil {
				return 0, err
			}
			n.ModifiedAt = t
		case nodeScheduler:
			r, err := decodeScheduler(v)
			if err != nil {
				return 0, err
			}
			n.Scheduler = r
		case nodeChildren:
			child, err := decodeNode(v)
			if err != nil {
				return 0, err
			}
			n.Children = append(n.Children, child)
		}
		return size, nil
	})
	if err != nil {
		return nil, err
	}
	if n.Kind != domain.KindTask && n.Kind != domain.KindWorkflow {
		return nil, fmt.Errorf("%w: node %q has unknown kind %d", domain.ErrInvalidArgument, n.Name, int(n.Kind))
	}
	if n.Status < domain.StatusUnstarted || n.Status > domain.StatusFailed {
		return nil, fmt.Errorf("%w: node %q has unknown status %d", domain.ErrInvalidArgument, n.Name, int(n.Status))
	}
	if n.IsWorkflow() && n.Children == nil {
		n.Children = []*domain.Node{}
	}
	return n, nil
}

func decodeScheduler(data []byte) (*domain.SchedulerRequest, error) {
	r := &domain.SchedulerRequest{}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ == protowire.VarintType {
			v, size := protowire.ConsumeVarint(b)
			switch num {
			case schedNodes:
				r.NodeCount = int(int64(v))
			case schedProcs:
				r.ProcsPerNode = int(int64(v))
			}
			return size, nil
		}
		if typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}

		v, size := protowire.ConsumeBytes(b)
		if size < 0 {
			return size, nil
		}
		switch num {
		case schedKind:
			r.Kind = string(v)
		case schedPartition:
			r.Partition = string(v)
		case schedRequested, schedConsumed, schedRemaining:
			d, err := decodeDuration(v)
			if err != nil {
				return 0, err
			}
			switch num {
			case schedRequested:
				r.WallclockRequested = d
			case schedConsumed:
				r.WallclockConsumed = &d
			case schedRemaining:
				r.WallclockRemaining = &d
			}
		}
		return size, nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func decodeTime(b []byte) (time.Time, error) {
	ts := &timestamppb.Timestamp{}
	if err := proto.Unmarshal(b, ts); err != nil {
		return time.Time{}, err
	}
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, err
	}
	return ts.AsTime(), nil
}

func decodeDuration(b []byte) (time.Duration, error) {
	d := &durationpb.Duration{}
	if err := proto.Unmarshal(b, d); err != nil {
		return 0, err
	}
	return d.AsDuration(), nil
}

// consumeFields walks the top-level fields of a message. fn consumes the
// value of each field and returns its length, or a negative protowire error
// code.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}
