package component

import "github.com/milk9111/workbench/replication"

// NetworkIdentity ties an entity to an object in the shared session. An empty
// ID, or an ID the session no longer knows, marks the entity as stale.
type NetworkIdentity struct {
	ID replication.ObjectID
}

var NetworkIdentityComponent = NewComponent[NetworkIdentity]()
