package scene

import (
	"github.com/google/uuid"
	"github.com/milk9111/workbench/replication"
)

var objectNamespace = uuid.MustParse("6f0b6a52-3c1e-4f43-9a64-0d7e51c2a9b1")

// ObjectID returns the replicated object id of an entity. Explicit ids win;
// otherwise the id is a name-based UUID so every participant loading the same
// scene agrees on it.
func (s Spec) ObjectID(e EntitySpec) replication.ObjectID {
	if e.ID != "" {
		return replication.ObjectID(e.ID)
	}
	return replication.ObjectID(uuid.NewSHA1(objectNamespace, []byte(s.Name+"/"+e.Name)).String())
}

// NewReplicaID returns a fresh random participant id.
func NewReplicaID() replication.ReplicaID {
	return replication.ReplicaID(uuid.NewString())
}
