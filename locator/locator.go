package locator

import "icelink/ice"

// FindObjectByID issues the well-known findObjectById operation against
// a locator proxy.
func FindObjectByID(d ice.Dispatcher, id string) (ice.LocatorResult, error) {
	return invokeLocator(d, "findObjectById", id)
}

// FindAdapterByID issues the well-known findAdapterById operation
// against a locator proxy.
func FindAdapterByID(d ice.Dispatcher, adapterID string) (ice.LocatorResult, error) {
	return invokeLocator(d, "findAdapterById", adapterID)
}

func invokeLocator(d ice.Dispatcher, operation, arg string) (ice.LocatorResult, error) {
	params := ice.NewEncapsulation(ice.EncodeString(nil, arg))
	reply, err := d.Dispatch(operation, ice.ModeIdempotent, params, nil)
	if err != nil {
		return ice.LocatorResult{}, err
	}
	if err := checkLocatorReply(reply); err != nil {
		return ice.LocatorResult{}, err
	}
	pos := 0
	return ice.DecodeLocatorResult(reply.Body.Data, &pos)
}

func checkLocatorReply(reply ice.ReplyData) error {
	switch reply.Status {
	case ice.StatusOk:
		return nil
	case ice.StatusUnknownLocalException:
		return ice.NewRemoteFault(reply.Cause)
	default:
		return ice.NewProtocolFault("unexpected reply status %d from locator", reply.Status)
	}
}

// Resolve turns an indirect proxy (one with an adapter name, or a bare
// identity) into a concrete endpoint:
//
//   - adapter given      -> findAdapterById(adapter)
//   - bare identity given -> findObjectById(identity); if the returned
//     endpoint is WellKnownObject(name), recurse with
//     findAdapterById(name); otherwise the result is final.
func Resolve(locatorProxy ice.Dispatcher, p ParsedProxy) (ice.LocatorResult, error) {
	if p.Adapter != "" {
		return FindAdapterByID(locatorProxy, p.Adapter)
	}

	result, err := FindObjectByID(locatorProxy, p.Identity.String())
	if err != nil {
		return ice.LocatorResult{}, err
	}
	if result.Endpoint.Kind == ice.EndpointWellKnownObject {
		return FindAdapterByID(locatorProxy, result.Endpoint.WellKnownName)
	}
	return result, nil
}
