// Package youversion is a typed client for the YouVersion Platform API.
//
// Client blocks; AsyncClient has the same methods and returns a Future per
// call. Both are scoped resources: create one, use it, Close it. With and
// WithAsync do that for you.
//
//	err := youversion.With(ctx, key, func(ctx context.Context, c *youversion.Client) error {
//	    res, err := c.GetPassage(ctx, 111, "JHN.3.16", nil)
//	    if err != nil {
//	        return err // connection, auth, rate limit, server, decode
//	    }
//	    res.Match(
//	        func(p youversion.Passage) { fmt.Println(p.Reference, p.Content) },
//	        func(e apierr.DomainError) { fmt.Println(e) },
//	    )
//	    return nil
//	})
//
// # Errors
//
// Expected failures of a well-formed call (NotFound for 404, InvalidInput for
// 400 where the endpoint defines it) come back inside result.Result.
// Everything else comes back as the error return; see package apierr.
//
// # Pagination
//
// List methods return one Page. The client never walks pages on its own:
//
//	opts := &youversion.ListLanguagesOptions{}
//	for {
//	    res, err := c.ListLanguages(ctx, opts)
//	    ...
//	    page := res.Value()
//	    if !page.HasNext() {
//	        break
//	    }
//	    opts.PageToken = page.NextToken()
//	}
package youversion
