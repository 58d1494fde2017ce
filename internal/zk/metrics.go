package zk

import (
	"expvar"

	"github.com/rcrowley/go-metrics"
)

var (
	registry = metrics.NewRegistry()

	proveTimer     = metrics.NewRegisteredTimer("zk.prove", registry)
	verifyTimer    = metrics.NewRegisteredTimer("zk.verify", registry)
	proveFailures  = metrics.NewRegisteredCounter("zk.prove.failures", registry)
	verifyFailures = metrics.NewRegisteredCounter("zk.verify.failures", registry)
	decodeFailures = metrics.NewRegisteredCounter("zk.decode.failures", registry)
)

func init() {
	expvar.Publish("zk", expvar.Func(func() any {
		return registry.GetAll()
	}))
}
